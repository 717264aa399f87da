package schema

import "time"

// StoreStatus represents the status of the run store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalSites    int              `json:"total_sites"`
	TotalRuns     int              `json:"total_runs"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord is the flat export row of a run, joined with its site URL.
type RunRecord struct {
	RunID             string
	SiteID            string
	SiteURL           string
	UserID            string
	Strategy          string
	CreatedAt         time.Time
	Performance       *int
	SEO               *int
	Accessibility     *int
	BestPractices     *int
	LCPMs             *float64
	CLS               *float64
	INPMs             *float64
	INPSource         string
	FinalURL          *string
	PageTitle         *string
	LighthouseVersion *string
}
