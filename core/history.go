package core

import (
	"context"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// ClampLimit bounds a page size to [1, MaxHistoryLimit], defaulting when unset.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return contract.DefaultHistoryLimit
	case limit > contract.MaxHistoryLimit:
		return contract.MaxHistoryLimit
	default:
		return limit
	}
}

// History returns the user's runs matching query.
// Every site in query.SiteIDs must belong to the user.
func (a *Auditor) History(ctx context.Context, user schema.User, query schema.RunQuery) ([]schema.Run, error) {
	if user.ID == "" {
		return nil, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	if query.Strategy != "" {
		if _, err := schema.ParseStrategy(string(query.Strategy)); err != nil {
			return nil, err
		}
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, schema.NewError(schema.KindInvalidInput, "from cannot be after to")
	}
	if query.Offset < 0 {
		return nil, schema.NewError(schema.KindInvalidInput, "offset cannot be negative")
	}
	for _, id := range query.SiteIDs {
		if _, err := a.store.GetSite(ctx, user.ID, id); err != nil {
			return nil, err
		}
	}
	query.Limit = ClampLimit(query.Limit)

	runs, err := a.store.ListRuns(ctx, user.ID, query)
	if err != nil {
		return nil, asStorageError("list runs", err)
	}
	return runs, nil
}

// Dashboard computes the rollups over all of the user's sites and retained runs.
func (a *Auditor) Dashboard(ctx context.Context, user schema.User) (schema.DashboardSummary, error) {
	if user.ID == "" {
		return schema.DashboardSummary{}, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	sites, err := a.store.ListSites(ctx, user.ID)
	if err != nil {
		return schema.DashboardSummary{}, asStorageError("list sites", err)
	}
	runs, err := a.store.ListRuns(ctx, user.ID, schema.RunQuery{})
	if err != nil {
		return schema.DashboardSummary{}, asStorageError("list runs", err)
	}
	return Summarize(runs, sites, a.now().UTC()), nil
}

// Impact derives the business impact of one of the user's runs.
func (a *Auditor) Impact(ctx context.Context, user schema.User, runID string) (*schema.Run, schema.BusinessImpact, error) {
	if user.ID == "" {
		return nil, schema.BusinessImpact{}, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	run, err := a.store.GetRun(ctx, user.ID, runID)
	if err != nil {
		return nil, schema.BusinessImpact{}, err
	}
	return run, DeriveImpact(run.Metrics.LCPMs), nil
}

// LatestRun returns the newest run of a site, optionally filtered by strategy.
// A site without runs yields nil.
func (a *Auditor) LatestRun(ctx context.Context, user schema.User, siteID string, strategy schema.Strategy) (*schema.Run, error) {
	runs, err := a.History(ctx, user, schema.RunQuery{SiteIDs: []string{siteID}, Strategy: strategy, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
