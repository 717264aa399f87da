package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/pagepulse/schema"
)

// Default values for configuration.
const (
	DefaultPSIEndpoint  = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	DefaultListen       = ":8080"
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
	DefaultBatchWorkers = 1
	DefaultBatchQPS     = 1.0
)

// DefaultPSITimeout is the hard timeout of a provider call.
var DefaultPSITimeout = schema.ProviderTimeoutSeconds * time.Second

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Needs declares which settings a command requires.
// Missing required settings fail startup instead of failing each request.
type Needs struct {
	Provider bool // PSI API key
	Server   bool // JWT and cron secrets
	User     bool // CLI identity
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	PSIAPIKey   string
	PSIEndpoint string
	PSITimeout  time.Duration

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Listen         string
	JWTSecret      string
	CronSecret     string
	AllowedOrigins []string

	User         string
	BatchWorkers int
	BatchQPS     float64

	LogLevel  string
	LogFormat string
	LogFile   string

	Output     schema.OutputMode
	OutputFile string
	Limit      int
	Offset     int
	Strategy   schema.Strategy // empty means any
	From       *time.Time
	To         *time.Time
	Ascending  bool
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	PSIAPIKey      string `mapstructure:"psi-api-key"`
	PSIEndpoint    string `mapstructure:"psi-endpoint"`
	PSITimeout     string `mapstructure:"psi-timeout"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	User           string `mapstructure:"user"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`
	LogFile        string `mapstructure:"log-file"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	Listen         string `mapstructure:"listen"`
	JWTSecret      string `mapstructure:"jwt-secret"`
	CronSecret     string `mapstructure:"cron-secret"`
	AllowedOrigins string `mapstructure:"allowed-origins"`

	// --- Fields from batchCmd.Flags() ---
	BatchWorkers int     `mapstructure:"batch-workers"`
	BatchQPS     float64 `mapstructure:"batch-qps"`

	// --- Fields from historyCmd.Flags() ---
	Limit    int    `mapstructure:"limit"`
	Offset   int    `mapstructure:"offset"`
	Strategy string `mapstructure:"strategy"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Asc      bool   `mapstructure:"asc"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, needs Needs, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processProvider(cfg, input, needs); err != nil {
		return err
	}
	if err := processServer(cfg, input, needs); err != nil {
		return err
	}
	if err := processHistoryQuery(cfg, input, now); err != nil {
		return err
	}
	if needs.User && cfg.User == "" {
		return fmt.Errorf("user is required (set --user or PAGEPULSE_USER)")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// NormalizeMySQLDSN forces parseTime and UTC on a MySQL DSN so timestamps scan into time.Time.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// validateBackendConfigs validates the store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.StoreBackend))
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store-backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}
	if cfg.StoreBackend == schema.MySQLBackend {
		dsn, err := NormalizeMySQLDSN(cfg.StoreDBConnect)
		if err != nil {
			return err
		}
		cfg.StoreDBConnect = dsn
	}
	return nil
}

// validateSimpleInputs processes and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.User = strings.TrimSpace(input.User)
	cfg.LogFile = input.LogFile

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log-format '%s'. must be text, json", input.LogFormat)
	}

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, xlsx, parquet", input.Output)
	}
	if (cfg.Output == schema.XLSXOut || cfg.Output == schema.ParquetOut) && cfg.OutputFile == "" {
		return fmt.Errorf("output-file is required for %s output", cfg.Output)
	}
	return nil
}

// processProvider validates the audit provider settings.
func processProvider(cfg *Config, input *ConfigRawInput, needs Needs) error {
	cfg.PSIAPIKey = strings.TrimSpace(input.PSIAPIKey)
	cfg.PSIEndpoint = strings.TrimSpace(input.PSIEndpoint)
	if cfg.PSIEndpoint == "" {
		cfg.PSIEndpoint = DefaultPSIEndpoint
	}

	cfg.PSITimeout = DefaultPSITimeout
	if input.PSITimeout != "" {
		d, err := time.ParseDuration(input.PSITimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid psi-timeout '%s'", input.PSITimeout)
		}
		cfg.PSITimeout = d
	}

	cfg.BatchWorkers = input.BatchWorkers
	if cfg.BatchWorkers == 0 {
		cfg.BatchWorkers = DefaultBatchWorkers
	}
	if cfg.BatchWorkers < 0 {
		return fmt.Errorf("batch-workers must be greater than 0 (received %d)", input.BatchWorkers)
	}
	cfg.BatchQPS = input.BatchQPS
	if cfg.BatchQPS == 0 {
		cfg.BatchQPS = DefaultBatchQPS
	}
	if cfg.BatchQPS < 0 {
		return fmt.Errorf("batch-qps must be greater than 0 (received %g)", input.BatchQPS)
	}

	if needs.Provider && cfg.PSIAPIKey == "" {
		return fmt.Errorf("psi-api-key is required (set --psi-api-key or PAGEPULSE_PSI_API_KEY)")
	}
	return nil
}

// processServer validates the HTTP server settings.
func processServer(cfg *Config, input *ConfigRawInput, needs Needs) error {
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	cfg.JWTSecret = input.JWTSecret
	cfg.CronSecret = input.CronSecret

	cfg.AllowedOrigins = nil
	for origin := range strings.SplitSeq(input.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if !needs.Server {
		return nil
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required to serve (set PAGEPULSE_JWT_SECRET)")
	}
	if cfg.CronSecret == "" {
		return fmt.Errorf("cron-secret is required to serve (set PAGEPULSE_CRON_SECRET)")
	}
	return nil
}

// processHistoryQuery handles paging, filters and the time range.
func processHistoryQuery(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.Limit = input.Limit
	if cfg.Limit == 0 {
		cfg.Limit = DefaultHistoryLimit
	}
	if cfg.Limit < 0 || cfg.Limit > MaxHistoryLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	}
	if input.Offset < 0 {
		return fmt.Errorf("offset cannot be negative (received %d)", input.Offset)
	}
	cfg.Offset = input.Offset
	cfg.Ascending = input.Asc

	cfg.Strategy = ""
	if input.Strategy != "" {
		s, err := schema.ParseStrategy(strings.ToLower(input.Strategy))
		if err != nil {
			return err
		}
		cfg.Strategy = s
	}

	cfg.From, cfg.To = nil, nil
	if input.From != "" {
		t, err := ParseTimeBound(input.From, now)
		if err != nil {
			return fmt.Errorf("invalid from '%s': %w", input.From, err)
		}
		cfg.From = &t
	}
	if input.To != "" {
		t, err := ParseTimeBound(input.To, now)
		if err != nil {
			return fmt.Errorf("invalid to '%s': %w", input.To, err)
		}
		cfg.To = &t
	}
	if cfg.From != nil && cfg.To != nil && cfg.From.After(*cfg.To) {
		return fmt.Errorf("from (%s) cannot be after to (%s)", cfg.From.Format(DateTimeFormat), cfg.To.Format(DateTimeFormat))
	}
	return nil
}

// RunQuery builds the history query described by the config.
func (c *Config) RunQuery(siteIDs []string) schema.RunQuery {
	return schema.RunQuery{
		SiteIDs:   siteIDs,
		Strategy:  c.Strategy,
		From:      c.From,
		To:        c.To,
		Limit:     c.Limit,
		Offset:    c.Offset,
		Ascending: c.Ascending,
	}
}
