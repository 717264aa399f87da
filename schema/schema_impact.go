package schema

import "time"

// BusinessImpact is derived from a run's LCP and never persisted.
type BusinessImpact struct {
	BounceRate   int            `json:"bounce_rate"`
	RevenueRisk  RevenueRisk    `json:"revenue_risk"`
	VisitorLoss  string         `json:"visitor_loss"`
	SEOPenalty   SEOPenaltyRisk `json:"seo_penalty"`
	LCPAvailable bool           `json:"lcp_available"`
}

// SiteSummary is the dashboard view of a single site.
type SiteSummary struct {
	Site      Site     `json:"site"`
	LatestRun *Run     `json:"latest_run,omitempty"`
	AvgPerf   *float64 `json:"avg_performance,omitempty"`
	RunCount  int      `json:"run_count"`
}

// DashboardSummary holds rollups over a user's recent runs.
type DashboardSummary struct {
	GeneratedAt    time.Time     `json:"generated_at"`
	TotalSites     int           `json:"total_sites"`
	RecentRuns     int           `json:"recent_runs"`
	AvgPerformance *float64      `json:"avg_performance"`
	WorstSite      *SiteSummary  `json:"worst_site,omitempty"`
	LastRunTime    *time.Time    `json:"last_run_time,omitempty"`
	Sites          []SiteSummary `json:"sites"`
}

// BatchResult is the outcome of auditing one site in a batch.
type BatchResult struct {
	SiteID      string      `json:"site_id"`
	Site        string      `json:"site"`
	Status      BatchStatus `json:"status"`
	Performance *int        `json:"performance,omitempty"`
	Message     string      `json:"msg,omitempty"`
}

// BatchReport is the full batch outcome.
type BatchReport struct {
	Success bool          `json:"success"`
	Ran     int           `json:"ran"`
	Details []BatchResult `json:"details"`
}
