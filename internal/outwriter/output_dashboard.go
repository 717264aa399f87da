package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errParquetHistoryOnly is returned for views that have no Parquet schema.
var errParquetHistoryOnly = errors.New("parquet output is only supported for history")

var dashboardHeader = []string{"site_url", "name", "runs", "avg_perf", "latest_perf", "latest_lcp", "latest_at"}

// WriteDashboardResults renders dashboard rollups in the configured output format.
func WriteDashboardResults(w io.Writer, summary schema.DashboardSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, dashboardHeader, func(cw *csv.Writer) error {
				for _, s := range summary.Sites {
					if err := cw.Write(dashboardRecord(s)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.XLSXOut:
		cells := make([][]any, len(summary.Sites))
		for i, s := range summary.Sites {
			row := dashboardRecord(s)
			cells[i] = make([]any, len(row))
			for j, v := range row {
				cells[i][j] = v
			}
		}
		return writeXLSX(cfg.OutputFile, "Dashboard", dashboardHeader, cells)
	case schema.ParquetOut:
		return errParquetHistoryOnly
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardTable(w, summary, cfg)
		}, "Wrote table")
	}
}

// dashboardRecord flattens a site summary; absent values are empty.
func dashboardRecord(s schema.SiteSummary) []string {
	record := []string{s.Site.URL, "", fmt.Sprintf("%d", s.RunCount), csvFloatPtr(s.AvgPerf), "", "", ""}
	if s.Site.Name != nil {
		record[1] = *s.Site.Name
	}
	if s.LatestRun != nil {
		record[4] = csvIntPtr(s.LatestRun.Metrics.Performance)
		record[5] = csvFloatPtr(s.LatestRun.Metrics.LCPMs)
		record[6] = s.LatestRun.CreatedAt.UTC().Format(contract.DateTimeFormat)
	}
	return record
}

func writeDashboardTable(w io.Writer, summary schema.DashboardSummary, cfg *contract.Config) error {
	avg := fmtFloatPtr(summary.AvgPerformance, 1)
	last := naText
	if summary.LastRunTime != nil {
		last = summary.LastRunTime.UTC().Format(contract.DateTimeFormat)
	}
	if _, err := fmt.Fprintf(w, "Sites: %d | Runs (%dd): %d | Avg perf: %s | Last run: %s\n",
		summary.TotalSites, schema.DashboardWindowDays, summary.RecentRuns, avg, last); err != nil {
		return err
	}
	if summary.WorstSite != nil {
		if _, err := fmt.Fprintf(w, "Needs attention: %s (avg %s)\n",
			summary.WorstSite.Site.DisplayName(), fmtFloatPtr(summary.WorstSite.AvgPerf, 1)); err != nil {
			return err
		}
	}
	if len(summary.Sites) == 0 {
		_, err := fmt.Fprintln(w, "No sites tracked.")
		return err
	}

	maxURLWidth := GetMaxTableURLWidth(cfg)
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Site", "Runs", "Avg Perf", "Latest Perf", "Latest LCP (ms)", "Label"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(summary.Sites))
	for _, s := range summary.Sites {
		var perf *int
		var lcp *float64
		if s.LatestRun != nil {
			perf = s.LatestRun.Metrics.Performance
			lcp = s.LatestRun.Metrics.LCPMs
		}
		data = append(data, []string{
			contract.TruncateString(s.Site.DisplayName(), maxURLWidth),
			fmt.Sprintf("%d", s.RunCount),
			fmtFloatPtr(s.AvgPerf, 1),
			fmtIntPtr(perf),
			fmtFloatPtr(lcp, 0),
			labelText(schema.GetPlainLabel(perf), perf, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
