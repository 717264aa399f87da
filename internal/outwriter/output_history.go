package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/parquet"
	"github.com/huangsam/pagepulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// historyHeader is shared by CSV and XLSX history output.
var historyHeader = []string{
	"site_name", "site_url", "created_at", "strategy",
	"perf", "seo", "a11y", "bp",
	"lcp_ms", "inp_ms", "inp_source", "cls",
	"final_url", "page_title", "lighthouse_version",
}

// WriteHistoryResults renders runs in the configured output format.
func WriteHistoryResults(w io.Writer, runs []schema.Run, sites []schema.Site, cfg *contract.Config) error {
	rows := schema.EnrichRuns(runs, sites)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, rows)
		}, "Wrote CSV")
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, "History", historyHeader, historyCells(rows))
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errBinaryToStdout
		}
		records := runsToRecords(rows, runs)
		if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(records), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d runs to %s\n", len(records), cfg.OutputFile)
		return nil
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, rows, cfg)
		}, "Wrote table")
	}
}

func writeHistoryCSV(w io.Writer, rows []schema.HistoryRow) error {
	return writeCSVWithHeader(w, historyHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write(historyRecord(r)); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// historyRecord is the CSV form of a row; absent values are empty.
func historyRecord(r schema.HistoryRow) []string {
	return []string{
		r.SiteName,
		r.SiteURL,
		r.CreatedAt.UTC().Format(contract.DateTimeFormat),
		string(r.Strategy),
		csvIntPtr(r.Performance),
		csvIntPtr(r.SEO),
		csvIntPtr(r.Accessibility),
		csvIntPtr(r.BestPractices),
		csvFloatPtr(r.LCPMs),
		csvFloatPtr(r.INPMs),
		string(r.INPSource),
		csvFloatPtr(r.CLS),
		csvStringPtr(r.FinalURL),
		csvStringPtr(r.PageTitle),
		csvStringPtr(r.LighthouseVersion),
	}
}

func historyCells(rows []schema.HistoryRow) [][]any {
	cells := make([][]any, len(rows))
	for i, r := range rows {
		cells[i] = []any{
			r.SiteName,
			r.SiteURL,
			r.CreatedAt.UTC().Format(contract.DateTimeFormat),
			string(r.Strategy),
			cellInt(r.Performance),
			cellInt(r.SEO),
			cellInt(r.Accessibility),
			cellInt(r.BestPractices),
			cellFloat(r.LCPMs),
			cellFloat(r.INPMs),
			string(r.INPSource),
			cellFloat(r.CLS),
			csvStringPtr(r.FinalURL),
			csvStringPtr(r.PageTitle),
			csvStringPtr(r.LighthouseVersion),
		}
	}
	return cells
}

func writeHistoryTable(w io.Writer, rows []schema.HistoryRow, cfg *contract.Config) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}

	maxURLWidth := GetMaxTableURLWidth(cfg)
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Site", "Time", "Strategy", "Perf", "LCP (ms)", "INP (ms)", "CLS", "Label"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		inp := fmtFloatPtr(r.INPMs, 0)
		if r.INPSource != schema.InpSourceNone {
			inp = fmt.Sprintf("%s (%s)", inp, r.INPSource)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", r.Rank),
			contract.TruncateString(r.SiteURL, maxURLWidth),
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			string(r.Strategy),
			fmtIntPtr(r.Performance),
			fmtFloatPtr(r.LCPMs, 0),
			inp,
			fmtFloatPtr(r.CLS, 3),
			labelText(r.Label, r.Performance, cfg.UseColors),
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

// labelText colors a performance label by its score status when enabled.
func labelText(label string, perf *int, useColors bool) string {
	if !useColors {
		return label
	}
	switch core.ScoreStatus(perf) {
	case schema.StatusGood:
		return contract.LowColor.Sprint(label)
	case schema.StatusNeedsImprovement:
		return contract.ModerateColor.Sprint(label)
	case schema.StatusPoor:
		return contract.CriticalColor.Sprint(label)
	default:
		return contract.MutedColor.Sprint(label)
	}
}

// runsToRecords flattens runs into export records, taking site URLs from rows.
func runsToRecords(rows []schema.HistoryRow, runs []schema.Run) []schema.RunRecord {
	records := make([]schema.RunRecord, len(runs))
	for i, r := range runs {
		m := r.Metrics
		records[i] = schema.RunRecord{
			RunID:             r.ID,
			SiteID:            r.SiteID,
			SiteURL:           rows[i].SiteURL,
			UserID:            r.UserID,
			Strategy:          string(r.Strategy),
			CreatedAt:         r.CreatedAt,
			Performance:       m.Performance,
			SEO:               m.SEO,
			Accessibility:     m.Accessibility,
			BestPractices:     m.BestPractices,
			LCPMs:             m.LCPMs,
			CLS:               m.CLS,
			INPMs:             m.INPMs,
			INPSource:         string(m.INPSource),
			FinalURL:          m.FinalURL,
			PageTitle:         m.PageTitle,
			LighthouseVersion: m.LighthouseVersion,
		}
	}
	return records
}
