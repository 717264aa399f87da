package store

import (
	"context"
	"fmt"

	"github.com/huangsam/pagepulse/schema"
)

// GetStatus returns row counts and the run time range of the store.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}

	if s.disabled() {
		return status, nil
	}

	sites := quoteTableName(sitesTable, s.backend)
	runs := quoteTableName(runsTable, s.backend)

	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", sites)).Scan(&status.TotalSites); err != nil {
		return status, fmt.Errorf("failed to get total sites: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var newest, oldest timeValue
		query := fmt.Sprintf("SELECT MAX(created_at), MIN(created_at) FROM %s", runs)
		if err := s.db.QueryRowContext(ctx, query).Scan(&newest, &oldest); err != nil {
			return status, fmt.Errorf("failed to get run time range: %w", err)
		}
		status.LastRunTime = newest.Time
		status.OldestRunTime = oldest.Time
	}

	status.TableSizes[sitesTable] = int64(status.TotalSites)
	status.TableSizes[runsTable] = int64(status.TotalRuns)
	return status, nil
}

// PrintStatus prints store status information.
func PrintStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Sites: %d\n", status.TotalSites)
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for _, table := range []string{sitesTable, runsTable} {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
