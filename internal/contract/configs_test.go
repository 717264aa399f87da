package contract

import (
	"testing"
	"time"

	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		input       *ConfigRawInput
		needs       Needs
		expectError bool
	}{
		{
			name:  "valid minimal config",
			input: &ConfigRawInput{},
		},
		{
			name:        "missing api key for provider command",
			input:       &ConfigRawInput{},
			needs:       Needs{Provider: true},
			expectError: true,
		},
		{
			name:  "api key present",
			input: &ConfigRawInput{PSIAPIKey: "k"},
			needs: Needs{Provider: true},
		},
		{
			name:        "serve without secrets",
			input:       &ConfigRawInput{JWTSecret: "j"},
			needs:       Needs{Server: true},
			expectError: true,
		},
		{
			name:  "serve with secrets",
			input: &ConfigRawInput{JWTSecret: "j", CronSecret: "c"},
			needs: Needs{Server: true},
		},
		{
			name:        "missing user",
			input:       &ConfigRawInput{},
			needs:       Needs{User: true},
			expectError: true,
		},
		{
			name:        "invalid backend",
			input:       &ConfigRawInput{StoreBackend: "oracle"},
			expectError: true,
		},
		{
			name:        "mysql without dsn",
			input:       &ConfigRawInput{StoreBackend: "mysql"},
			expectError: true,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{Output: "yaml"},
			expectError: true,
		},
		{
			name:        "xlsx without file",
			input:       &ConfigRawInput{Output: "xlsx"},
			expectError: true,
		},
		{
			name:        "limit too large",
			input:       &ConfigRawInput{Limit: 201},
			expectError: true,
		},
		{
			name:        "negative offset",
			input:       &ConfigRawInput{Offset: -1},
			expectError: true,
		},
		{
			name:        "bad strategy",
			input:       &ConfigRawInput{Strategy: "tablet"},
			expectError: true,
		},
		{
			name:        "from after to",
			input:       &ConfigRawInput{From: "2025-03-09", To: "2025-03-01"},
			expectError: true,
		},
		{
			name:        "bad timeout",
			input:       &ConfigRawInput{PSITimeout: "soon"},
			expectError: true,
		},
		{
			name:        "bad log level",
			input:       &ConfigRawInput{LogLevel: "loud"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input, tt.needs, now)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{}, Needs{}, time.Now()))

	assert.Equal(t, DefaultPSIEndpoint, cfg.PSIEndpoint)
	assert.Equal(t, 30*time.Second, cfg.PSITimeout)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultHistoryLimit, cfg.Limit)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 1, cfg.BatchWorkers)
	assert.InDelta(t, 1.0, cfg.BatchQPS, 0.0001)
	assert.True(t, cfg.UseColors)
	assert.Nil(t, cfg.From)
	assert.Empty(t, cfg.Strategy)
}

func TestProcessAndValidateHistoryQuery(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	input := &ConfigRawInput{
		Strategy:       "Desktop",
		From:           "7 days ago",
		To:             "2025-03-10T00:00:00Z",
		Limit:          5,
		Offset:         10,
		Asc:            true,
		AllowedOrigins: " https://a.example.com, ,https://b.example.com",
	}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input, Needs{}, now))

	assert.Equal(t, schema.DesktopStrategy, cfg.Strategy)
	require.NotNil(t, cfg.From)
	assert.Equal(t, now.Add(-7*24*time.Hour), *cfg.From)
	require.NotNil(t, cfg.To)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), *cfg.To)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)

	q := cfg.RunQuery([]string{"s1"})
	assert.Equal(t, []string{"s1"}, q.SiteIDs)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 10, q.Offset)
	assert.True(t, q.Ascending)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=x", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := NormalizeMySQLDSN("user:pass@tcp(localhost:3306)/pagepulse")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = NormalizeMySQLDSN("not a dsn")
	assert.Error(t, err)
}
