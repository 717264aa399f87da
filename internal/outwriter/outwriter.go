// Package outwriter renders audit results as tables, JSON, CSV, XLSX and Parquet.
package outwriter

import (
	"io"
	"os"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct {
	w io.Writer
}

// NewOutWriter creates an output writer over stdout.
func NewOutWriter() *OutWriter {
	return &OutWriter{w: os.Stdout}
}

// NewOutWriterTo creates an output writer over w.
func NewOutWriterTo(w io.Writer) *OutWriter {
	return &OutWriter{w: w}
}

// WriteHistory prints runs using the configured output format.
// sites supplies the URL and name shown for each run.
func (ow *OutWriter) WriteHistory(runs []schema.Run, sites []schema.Site, cfg *contract.Config) error {
	return WriteHistoryResults(ow.w, runs, sites, cfg)
}

// WriteDashboard prints dashboard rollups using the configured output format.
func (ow *OutWriter) WriteDashboard(summary schema.DashboardSummary, cfg *contract.Config) error {
	return WriteDashboardResults(ow.w, summary, cfg)
}

// WriteBatch prints a batch report using the configured output format.
func (ow *OutWriter) WriteBatch(report schema.BatchReport, cfg *contract.Config) error {
	return WriteBatchResults(ow.w, report, cfg)
}

// WriteImpact prints the business impact of a run using the configured output format.
func (ow *OutWriter) WriteImpact(run *schema.Run, impact schema.BusinessImpact, cfg *contract.Config) error {
	return WriteImpactResults(ow.w, run, impact, cfg)
}

// WriteSites prints a site listing using the configured output format.
func (ow *OutWriter) WriteSites(sites []schema.Site, cfg *contract.Config) error {
	return WriteSiteResults(ow.w, sites, cfg)
}
