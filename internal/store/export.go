package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/pagepulse/internal/parquet"
)

// ExportRuns writes every stored run to a Parquet file at outputFile.
func ExportRuns(ctx context.Context, s *SQLStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := s.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d across %d sites\n", status.TotalRuns, status.TotalSites)

	records, err := s.ListRunRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	rows := parquet.ConvertRunRecords(records)
	if err := parquet.WriteRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(rows), outputFile)
	return nil
}
