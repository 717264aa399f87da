package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, contract.DefaultHistoryLimit, ClampLimit(0))
	assert.Equal(t, contract.DefaultHistoryLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, contract.MaxHistoryLimit, ClampLimit(10_000))
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addSite(t, "https://a.example")
	b := f.addSite(t, "https://b.example")

	for _, s := range []*schema.Site{a, b, a} {
		_, err := f.auditor.Trigger(ctx, f.user, schema.AuditRequest{SiteID: s.ID, URL: s.URL, Strategy: "mobile"})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}
	_, err := f.auditor.Trigger(ctx, f.user, schema.AuditRequest{SiteID: a.ID, URL: a.URL, Strategy: "desktop"})
	require.NoError(t, err)

	runs, err := f.auditor.History(ctx, f.user, schema.RunQuery{})
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, schema.DesktopStrategy, runs[0].Strategy)

	runs, err = f.auditor.History(ctx, f.user, schema.RunQuery{SiteIDs: []string{a.ID}, Strategy: schema.MobileStrategy})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = f.auditor.History(ctx, f.user, schema.RunQuery{Limit: 2, Ascending: true})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, a.ID, runs[0].SiteID)
	assert.Equal(t, b.ID, runs[1].SiteID)

	latest, err := f.auditor.LatestRun(ctx, f.user, b.ID, "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, b.ID, latest.SiteID)
}

func TestHistory_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	site := f.addSite(t, "https://a.example")

	_, err := f.auditor.History(ctx, schema.User{}, schema.RunQuery{})
	assert.ErrorIs(t, err, schema.ErrUnauthorized)

	_, err = f.auditor.History(ctx, f.user, schema.RunQuery{Strategy: "tablet"})
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	from := f.clock.Now()
	to := from.Add(-time.Hour)
	_, err = f.auditor.History(ctx, f.user, schema.RunQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	_, err = f.auditor.History(ctx, f.user, schema.RunQuery{Offset: -1})
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	_, err = f.auditor.History(ctx, f.user, schema.RunQuery{SiteIDs: []string{site.ID, "missing"}})
	assert.ErrorIs(t, err, schema.ErrNotFound)

	latest, err := f.auditor.LatestRun(ctx, f.user, site.ID, schema.MobileStrategy)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fast := f.addSite(t, "https://fast.example")
	slow := f.addSite(t, "https://slow.example")
	f.provider.respond(fast.URL, `{"lighthouseResult":{"categories":{"performance":{"score":0.95}}}}`)
	f.provider.respond(slow.URL, `{"lighthouseResult":{"categories":{"performance":{"score":0.35}}}}`)

	for _, s := range []*schema.Site{fast, slow} {
		_, err := f.auditor.Trigger(ctx, f.user, schema.AuditRequest{SiteID: s.ID, URL: s.URL, Strategy: "mobile"})
		require.NoError(t, err)
	}

	summary, err := f.auditor.Dashboard(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSites)
	assert.Equal(t, 2, summary.RecentRuns)
	require.NotNil(t, summary.AvgPerformance)
	assert.InDelta(t, 65.0, *summary.AvgPerformance, 1e-9)
	require.NotNil(t, summary.WorstSite)
	assert.Equal(t, slow.ID, summary.WorstSite.Site.ID)

	_, err = f.auditor.Dashboard(ctx, schema.User{})
	assert.ErrorIs(t, err, schema.ErrUnauthorized)
}

func TestImpact_NotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.auditor.Impact(context.Background(), f.user, "missing")
	assert.ErrorIs(t, err, schema.ErrNotFound)
}
