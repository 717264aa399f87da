package schema

// Custom string types for type safety.
type (
	// Strategy represents the device emulation mode for an audit.
	Strategy string

	// InpSource tags which signal an authoritative INP value came from.
	InpSource string

	// RevenueRisk is the four-level business risk classification.
	RevenueRisk string

	// SEOPenaltyRisk is the three-level search ranking risk classification.
	SEOPenaltyRisk string

	// BatchStatus represents the outcome of one site in a batch run.
	BatchStatus string

	// MetricStatus is the good / needs improvement / poor label of a metric.
	MetricStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run storage.
	DatabaseBackend string
)

// All strategies supported.
const (
	MobileStrategy  Strategy = "mobile" // default for batch runs
	DesktopStrategy Strategy = "desktop"
)

// All INP sources, in fallback order.
const (
	InpSourceNone   InpSource = ""
	InpSourceLab    InpSource = "lab"
	InpSourceField  InpSource = "field p75"
	InpSourceLegacy InpSource = "legacy"
)

// Revenue risk levels.
const (
	RiskLow      RevenueRisk = "Low"
	RiskMedium   RevenueRisk = "Medium"
	RiskHigh     RevenueRisk = "High"
	RiskCritical RevenueRisk = "Critical"
)

// SEO penalty levels.
const (
	SEOPenaltyNone     SEOPenaltyRisk = "None"
	SEOPenaltyPossible SEOPenaltyRisk = "Possible"
	SEOPenaltyLikely   SEOPenaltyRisk = "Likely"
)

// Batch outcomes.
const (
	BatchOK     BatchStatus = "ok"
	BatchFailed BatchStatus = "failed" // provider failure
	BatchError  BatchStatus = "error"  // anything else
)

// Metric status labels.
const (
	StatusGood             MetricStatus = "good"
	StatusNeedsImprovement MetricStatus = "needs improvement"
	StatusPoor             MetricStatus = "poor"
	StatusNA               MetricStatus = "NA"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	XLSXOut    OutputMode = "xlsx"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Retention, rate limiting and batch constants.
const (
	// RetainedRunsPerPair is how many runs are kept per (site, strategy).
	RetainedRunsPerPair = 50

	// RateLimitMaxRuns is how many runs a user may create per RateLimitWindowMinutes.
	RateLimitMaxRuns = 30

	// RateLimitWindowMinutes is the sliding window of the per-user limit.
	RateLimitWindowMinutes = 60

	// BatchSiteLimit caps the number of sites a single batch run visits.
	BatchSiteLimit = 50

	// DashboardWindowDays is the trailing window used by dashboard rollups.
	DashboardWindowDays = 7

	// ProviderTimeoutSeconds is the hard timeout of a provider call.
	ProviderTimeoutSeconds = 30

	// ProviderBodySnippetLen bounds the diagnostic body kept on provider errors.
	ProviderBodySnippetLen = 2000
)

// AllStrategies lists every strategy in display order.
var AllStrategies = []Strategy{MobileStrategy, DesktopStrategy}

// ValidStrategies lists all valid strategies.
var ValidStrategies = map[Strategy]struct{}{
	MobileStrategy:  {},
	DesktopStrategy: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	XLSXOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ParseStrategy validates a raw strategy string.
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(raw)
	if _, ok := ValidStrategies[s]; !ok {
		return "", NewError(KindInvalidInput, "strategy must be mobile or desktop")
	}
	return s, nil
}
