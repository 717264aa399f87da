package outwriter

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/parquet"
	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

var baseTime = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func sampleRuns() []schema.Run {
	return []schema.Run{
		{
			ID: "r1", SiteID: "s1", UserID: "u1", Strategy: schema.MobileStrategy, CreatedAt: baseTime,
			Metrics: schema.MetricSet{
				Performance: ptr(87), SEO: ptr(92), Accessibility: ptr(81), BestPractices: ptr(75),
				LCPMs: ptr(2345.6), CLS: ptr(0.042),
				INPMs: ptr(120.0), INPSource: schema.InpSourceLab,
				FinalURL: ptr("https://shop.example.com/"), PageTitle: ptr("Shop, home"), LighthouseVersion: ptr("12.0.0"),
			},
		},
		{
			ID: "r2", SiteID: "s2", UserID: "u1", Strategy: schema.DesktopStrategy, CreatedAt: baseTime.Add(-time.Hour),
			Metrics: schema.MetricSet{FinalURL: ptr("https://fallback.example/")},
		},
	}
}

func sampleSites() []schema.Site {
	return []schema.Site{{ID: "s1", URL: "https://shop.example.com/", Name: ptr("Shop")}}
}

func textConfig() *contract.Config {
	return &contract.Config{Output: schema.TextOut, Width: 200}
}

func TestWriteHistory_CSV(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.CSVOut}
	err := NewOutWriterTo(&buf).WriteHistory(sampleRuns(), sampleSites(), cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "site_name,site_url,created_at,strategy,perf,seo,a11y,bp,lcp_ms,inp_ms,inp_source,cls,final_url,page_title,lighthouse_version", lines[0])
	assert.Equal(t, `Shop,https://shop.example.com/,2026-07-01T09:00:00Z,mobile,87,92,81,75,2345.6,120,lab,0.042,https://shop.example.com/,"Shop, home",12.0.0`, lines[1])
	assert.Equal(t, ",https://fallback.example/,2026-07-01T08:00:00Z,desktop,,,,,,,,,https://fallback.example/,,", lines[2])
}

func TestWriteHistory_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.JSONOut}
	require.NoError(t, NewOutWriterTo(&buf).WriteHistory(sampleRuns(), sampleSites(), cfg))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Shop", rows[0]["site_name"])
	assert.Equal(t, "https://shop.example.com/", rows[0]["site_url"])
	assert.Equal(t, float64(87), rows[0]["perf"])
	assert.Equal(t, float64(75), rows[0]["bp"])
	assert.Equal(t, "lab", rows[0]["inp_source"])
	assert.Equal(t, "Fair", rows[0]["label"])
	assert.Nil(t, rows[1]["perf"])
	assert.Equal(t, "NA", rows[1]["label"])
}

func TestWriteHistory_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteHistory(sampleRuns(), sampleSites(), textConfig()))

	out := buf.String()
	assert.Contains(t, out, "https://shop.example.com/")
	assert.Contains(t, out, "120 (lab)")
	assert.Contains(t, out, "0.042")
	assert.Contains(t, out, "NA")
}

func TestWriteHistory_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteHistory(nil, nil, textConfig()))
	assert.Equal(t, "No runs found.\n", buf.String())
}

func TestWriteHistory_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")
	cfg := &contract.Config{Output: schema.XLSXOut, OutputFile: path}
	require.NoError(t, NewOutWriterTo(&bytes.Buffer{}).WriteHistory(sampleRuns(), sampleSites(), cfg))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, historyHeader, rows[0])
	assert.Equal(t, "Shop", rows[1][0])
	assert.Equal(t, "87", rows[1][4])
	assert.Equal(t, "75", rows[1][7])
	assert.Equal(t, "lab", rows[1][10])
	assert.Equal(t, "12.0.0", rows[1][14])
}

func TestWriteHistory_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path}
	require.NoError(t, NewOutWriterTo(&bytes.Buffer{}).WriteHistory(sampleRuns(), sampleSites(), cfg))

	rows, err := parquet.ReadRunsParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0].RunID)
	assert.Equal(t, "https://shop.example.com/", rows[0].SiteURL)
	require.NotNil(t, rows[0].Performance)
	assert.Equal(t, int32(87), *rows[0].Performance)
	assert.Nil(t, rows[1].Performance)
}

func TestBinaryOutputsRequireFile(t *testing.T) {
	for _, mode := range []schema.OutputMode{schema.XLSXOut, schema.ParquetOut} {
		cfg := &contract.Config{Output: mode}
		err := NewOutWriterTo(&bytes.Buffer{}).WriteHistory(sampleRuns(), nil, cfg)
		assert.ErrorIs(t, err, errBinaryToStdout, string(mode))
	}

	err := NewOutWriterTo(&bytes.Buffer{}).WriteSites(nil, &contract.Config{Output: schema.ParquetOut, OutputFile: "x.parquet"})
	assert.ErrorIs(t, err, errParquetHistoryOnly)
}

func TestWriteDashboard(t *testing.T) {
	runs := sampleRuns()
	site := schema.Site{ID: "s1", URL: "https://shop.example.com/", Name: ptr("Shop"), CreatedAt: baseTime}
	summary := schema.DashboardSummary{
		GeneratedAt:    baseTime,
		TotalSites:     1,
		RecentRuns:     1,
		AvgPerformance: ptr(87.0),
		LastRunTime:    &baseTime,
		Sites:          []schema.SiteSummary{{Site: site, LatestRun: &runs[0], AvgPerf: ptr(87.0), RunCount: 1}},
	}
	summary.WorstSite = &summary.Sites[0]

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteDashboard(summary, textConfig()))
	out := buf.String()
	assert.Contains(t, out, "Sites: 1 | Runs (7d): 1 | Avg perf: 87.0")
	assert.Contains(t, out, "Needs attention: Shop")

	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteDashboard(summary, &contract.Config{Output: schema.CSVOut}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "https://shop.example.com/,Shop,1,87,87,2345.6,2026-07-01T09:00:00Z", lines[1])
}

func TestWriteDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteDashboard(schema.DashboardSummary{}, textConfig()))
	assert.Contains(t, buf.String(), "Avg perf: NA")
	assert.Contains(t, buf.String(), "No sites tracked.")
}

func TestWriteBatch(t *testing.T) {
	report := schema.BatchReport{
		Success: true,
		Ran:     2,
		Details: []schema.BatchResult{
			{SiteID: "s1", Site: "https://a.example/", Status: schema.BatchOK, Performance: ptr(91)},
			{SiteID: "s2", Site: "https://b.example/", Status: schema.BatchFailed, Message: "provider timeout"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteBatch(report, textConfig()))
	assert.Contains(t, buf.String(), "Batch ran 2 sites (1 not ok)")
	assert.Contains(t, buf.String(), "provider timeout")

	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteBatch(report, &contract.Config{Output: schema.JSONOut}))
	var decoded schema.BatchReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report, decoded)
}

func TestWriteImpact(t *testing.T) {
	run := sampleRuns()[0]
	impact := schema.BusinessImpact{
		BounceRate: 30, RevenueRisk: schema.RiskMedium, VisitorLoss: "30 of every 100 visitors",
		SEOPenalty: schema.SEOPenaltyNone, LCPAvailable: true,
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteImpact(&run, impact, textConfig()))
	out := buf.String()
	assert.Contains(t, out, "Bounce rate:  30%")
	assert.Contains(t, out, "Revenue risk: Medium")
	assert.Contains(t, out, "LCP (ms):     2346 [good]")
	assert.Contains(t, out, "Performance:  87 [needs improvement]")

	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteImpact(&run, impact, &contract.Config{Output: schema.JSONOut}))
	var view map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	status := view["status"].(map[string]any)
	assert.Equal(t, "good", status["cls"])

	err := NewOutWriterTo(&buf).WriteImpact(&run, impact, &contract.Config{Output: schema.CSVOut})
	assert.Error(t, err)
}

func TestWriteSites(t *testing.T) {
	sites := []schema.Site{
		{ID: "s1", URL: "https://a.example/", Name: ptr("A"), CreatedAt: baseTime},
		{ID: "s2", URL: "https://b.example/", CreatedAt: baseTime},
	}

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteSites(sites, &contract.Config{Output: schema.CSVOut}))
	assert.Equal(t, "id,url,name,created_at\n"+
		"s1,https://a.example/,A,2026-07-01T09:00:00Z\n"+
		"s2,https://b.example/,,2026-07-01T09:00:00Z\n", buf.String())

	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteSites(nil, textConfig()))
	assert.Equal(t, "No sites tracked.\n", buf.String())
}

func TestGetMaxTableURLWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 90, expected: 20},
		{width: 125, expected: 40},
		{width: 400, expected: 70},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTableURLWidth(&contract.Config{Width: tt.width}))
	}
}
