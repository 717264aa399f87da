// Package parquet exports stored audit runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/pagepulse/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one exported audit run, flattened with its site URL.
type Run struct {
	// RunID is the unique identifier of the run
	RunID string `parquet:"run_id,snappy"`

	SiteID  string `parquet:"site_id,snappy"`
	SiteURL string `parquet:"site_url,snappy"`
	UserID  string `parquet:"user_id,snappy"`

	// Strategy is mobile or desktop
	Strategy string `parquet:"strategy,snappy"`

	// CreatedAt is when the run was stored (TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Category scores in 0..100 (nullable)
	Performance   *int32 `parquet:"performance,optional,snappy"`
	SEO           *int32 `parquet:"seo,optional,snappy"`
	Accessibility *int32 `parquet:"accessibility,optional,snappy"`
	BestPractices *int32 `parquet:"best_practices,optional,snappy"`

	// Core Web Vitals (nullable)
	LCPMs *float64 `parquet:"lcp_ms,optional,snappy"`
	CLS   *float64 `parquet:"cls,optional,snappy"`
	INPMs *float64 `parquet:"inp_ms,optional,snappy"`

	// INPSource records where the INP value came from, empty when absent
	INPSource string `parquet:"inp_source,snappy"`

	FinalURL          *string `parquet:"final_url,optional,snappy"`
	PageTitle         *string `parquet:"page_title,optional,snappy"`
	LighthouseVersion *string `parquet:"lighthouse_version,optional,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file at outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadRunsParquet reads every run back from a Parquet file.
func ReadRunsParquet(path string) ([]Run, error) {
	rows, err := parquet.ReadFile[Run](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

// ConvertRunRecords converts stored run records into Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:             record.RunID,
			SiteID:            record.SiteID,
			SiteURL:           record.SiteURL,
			UserID:            record.UserID,
			Strategy:          record.Strategy,
			CreatedAt:         record.CreatedAt,
			Performance:       int32Ptr(record.Performance),
			SEO:               int32Ptr(record.SEO),
			Accessibility:     int32Ptr(record.Accessibility),
			BestPractices:     int32Ptr(record.BestPractices),
			LCPMs:             record.LCPMs,
			CLS:               record.CLS,
			INPMs:             record.INPMs,
			INPSource:         record.INPSource,
			FinalURL:          record.FinalURL,
			PageTitle:         record.PageTitle,
			LighthouseVersion: record.LighthouseVersion,
		}
	}
	return result
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
