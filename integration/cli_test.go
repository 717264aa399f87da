//go:build basic

// Package integration contains end-to-end tests for the pagepulse binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv returns an environment pointing the CLI at a fresh SQLite file.
func sqliteEnv(t *testing.T, psiURL string) []string {
	t.Helper()
	return []string{
		"PAGEPULSE_STORE_BACKEND=sqlite",
		"PAGEPULSE_STORE_DB_CONNECT=" + filepath.Join(t.TempDir(), "pagepulse.db"),
		"PAGEPULSE_USER=user-cli",
		"PAGEPULSE_PSI_API_KEY=test-key",
		"PAGEPULSE_PSI_ENDPOINT=" + psiURL,
		"PAGEPULSE_COLOR=no",
	}
}

func TestVersion(t *testing.T) {
	_, err := runPagepulse(t, nil, "version")
	require.NoError(t, err)
}

func TestAuditLifecycleWithSQLite(t *testing.T) {
	psi := newFakePSI(t)
	defer psi.Close()
	env := sqliteEnv(t, psi.URL)

	out, err := runPagepulse(t, env, "sites", "add", "https://shop.example", "--output", "json")
	require.NoError(t, err)
	var sites []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sites))
	require.Len(t, sites, 1)
	siteID := sites[0].ID

	out, err = runPagepulse(t, env, "audit", siteID, "--strategy", "desktop", "--output", "json")
	require.NoError(t, err)
	var audited struct {
		Run struct {
			ID       string `json:"id"`
			Strategy string `json:"strategy"`
		} `json:"run"`
		Impact struct {
			SEOPenalty string `json:"seo_penalty"`
		} `json:"impact"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &audited))
	assert.Equal(t, "desktop", audited.Run.Strategy)
	require.NotEmpty(t, audited.Run.ID)

	out, err = runPagepulse(t, env, "history", "--output", "json")
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	assert.Len(t, runs, 1)

	out, err = runPagepulse(t, env, "impact", audited.Run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Bounce rate:")

	out, err = runPagepulse(t, env, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Sites: 1")

	exportPath := filepath.Join(t.TempDir(), "runs.parquet")
	_, err = runPagepulse(t, env, "store", "export", exportPath)
	require.NoError(t, err)
	assert.FileExists(t, exportPath)

	out, err = runPagepulse(t, env, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")
}

func TestBatchWithSQLite(t *testing.T) {
	psi := newFakePSI(t)
	defer psi.Close()
	env := sqliteEnv(t, psi.URL)

	_, err := runPagepulse(t, env, "sites", "add", "a.example")
	require.NoError(t, err)
	_, err = runPagepulse(t, env, "sites", "add", "b.example")
	require.NoError(t, err)

	out, err := runPagepulse(t, env, "batch", "--batch-qps", "0", "--output", "json")
	require.NoError(t, err)
	var report struct {
		Ran int `json:"ran"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Ran)
}

func TestCommandErrors(t *testing.T) {
	psi := newFakePSI(t)
	defer psi.Close()
	env := sqliteEnv(t, psi.URL)

	tests := []struct {
		name string
		env  []string
		args []string
	}{
		{"invalid site url", env, []string{"sites", "add", "not a url"}},
		{"unknown site", env, []string{"audit", "missing-site"}},
		{"bad strategy", env, []string{"history", "--strategy", "tablet"}},
		{"missing user", append(env, "PAGEPULSE_USER="), []string{"sites", "list"}},
		{"missing api key", append(env, "PAGEPULSE_PSI_API_KEY="), []string{"batch"}},
		{"bad backend", append(env, "PAGEPULSE_STORE_BACKEND=oracle"), []string{"store", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runPagepulse(t, tt.env, tt.args...)
			assert.Error(t, err)
		})
	}
}
