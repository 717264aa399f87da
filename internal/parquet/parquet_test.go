package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pagepulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	require.NotNil(t, s)

	expectedColumns := []string{
		"run_id", "site_id", "site_url", "user_id", "strategy", "created_at",
		"performance", "seo", "accessibility", "best_practices",
		"lcp_ms", "cls", "inp_ms", "inp_source",
		"final_url", "page_title", "lighthouse_version",
	}
	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertRunRecords(t *testing.T) {
	perf := 87
	lcp := 2100.5
	title := "Example"
	records := []schema.RunRecord{
		{
			RunID:       "r1",
			SiteID:      "s1",
			SiteURL:     "https://example.com/",
			UserID:      "u1",
			Strategy:    "mobile",
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Performance: &perf,
			LCPMs:       &lcp,
			INPSource:   "lab",
			PageTitle:   &title,
		},
		{RunID: "r2", SiteID: "s1", Strategy: "desktop"},
	}

	rows := ConvertRunRecords(records)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Performance)
	assert.Equal(t, int32(87), *rows[0].Performance)
	assert.Equal(t, &lcp, rows[0].LCPMs)
	assert.Equal(t, "lab", rows[0].INPSource)
	assert.Nil(t, rows[0].SEO)
	assert.Nil(t, rows[1].Performance)
	assert.Equal(t, "desktop", rows[1].Strategy)
}

func TestWriteAndReadRunsParquet(t *testing.T) {
	perf := int32(42)
	cls := 0.12
	data := []Run{
		{RunID: "r1", SiteID: "s1", SiteURL: "https://a.example/", Strategy: "mobile", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Performance: &perf, CLS: &cls},
		{RunID: "r2", SiteID: "s2", SiteURL: "https://b.example/", Strategy: "desktop", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteRunsParquet(data, path))

	got, err := ReadRunsParquet(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].RunID)
	require.NotNil(t, got[0].Performance)
	assert.Equal(t, int32(42), *got[0].Performance)
	assert.Nil(t, got[1].Performance)
	assert.True(t, data[1].CreatedAt.Equal(got[1].CreatedAt))
}

func TestWriteRunsParquet_BadPath(t *testing.T) {
	err := WriteRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}
