package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/olekukonko/tablewriter"
)

var sitesHeader = []string{"id", "url", "name", "created_at"}

// WriteSiteResults renders a site listing in the configured output format.
func WriteSiteResults(w io.Writer, sites []schema.Site, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, sites)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, sitesHeader, func(cw *csv.Writer) error {
				for _, s := range sites {
					if err := cw.Write(siteRecord(s)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.XLSXOut:
		cells := make([][]any, len(sites))
		for i, s := range sites {
			r := siteRecord(s)
			cells[i] = []any{r[0], r[1], r[2], r[3]}
		}
		return writeXLSX(cfg.OutputFile, "Sites", sitesHeader, cells)
	case schema.ParquetOut:
		return errParquetHistoryOnly
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeSitesTable(w, sites, cfg)
		}, "Wrote table")
	}
}

func siteRecord(s schema.Site) []string {
	name := ""
	if s.Name != nil {
		name = *s.Name
	}
	return []string{s.ID, s.URL, name, s.CreatedAt.UTC().Format(contract.DateTimeFormat)}
}

func writeSitesTable(w io.Writer, sites []schema.Site, cfg *contract.Config) error {
	if len(sites) == 0 {
		_, err := fmt.Fprintln(w, "No sites tracked.")
		return err
	}

	maxURLWidth := GetMaxTableURLWidth(cfg)
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "URL", "Name", "Added"})

	data := make([][]string, 0, len(sites))
	for _, s := range sites {
		r := siteRecord(s)
		r[1] = contract.TruncateString(r[1], maxURLWidth)
		r[3] = s.CreatedAt.UTC().Format("2006-01-02")
		data = append(data, r)
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
