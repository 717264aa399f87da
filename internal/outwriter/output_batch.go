package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var batchHeader = []string{"site_id", "site", "status", "perf", "msg"}

// WriteBatchResults renders a batch report in the configured output format.
func WriteBatchResults(w io.Writer, report schema.BatchReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, batchHeader, func(cw *csv.Writer) error {
				for _, d := range report.Details {
					if err := cw.Write([]string{d.SiteID, d.Site, string(d.Status), csvIntPtr(d.Performance), d.Message}); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.XLSXOut:
		cells := make([][]any, len(report.Details))
		for i, d := range report.Details {
			cells[i] = []any{d.SiteID, d.Site, string(d.Status), cellInt(d.Performance), d.Message}
		}
		return writeXLSX(cfg.OutputFile, "Batch", batchHeader, cells)
	case schema.ParquetOut:
		return errParquetHistoryOnly
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, report, cfg)
		}, "Wrote table")
	}
}

func writeBatchTable(w io.Writer, report schema.BatchReport, cfg *contract.Config) error {
	failed := 0
	for _, d := range report.Details {
		if d.Status != schema.BatchOK {
			failed++
		}
	}
	if _, err := fmt.Fprintf(w, "Batch ran %d sites (%d not ok)\n", report.Ran, failed); err != nil {
		return err
	}
	if len(report.Details) == 0 {
		return nil
	}

	maxURLWidth := GetMaxTableURLWidth(cfg)
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Site", "Status", "Perf", "Message"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(report.Details))
	for _, d := range report.Details {
		status := string(d.Status)
		if cfg.UseColors {
			status = batchStatusColor(d.Status)
		}
		data = append(data, []string{
			contract.TruncateString(d.Site, maxURLWidth),
			status,
			fmtIntPtr(d.Performance),
			contract.TruncateString(d.Message, 40),
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

func batchStatusColor(status schema.BatchStatus) string {
	switch status {
	case schema.BatchOK:
		return contract.LowColor.Sprint(status)
	case schema.BatchFailed:
		return contract.ModerateColor.Sprint(status)
	default:
		return contract.CriticalColor.Sprint(status)
	}
}
