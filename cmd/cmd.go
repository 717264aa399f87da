// Package cmd defines the command-line interface for pagepulse.
package cmd

import (
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the sites subcommands to the parent sites command
	sitesCmd.AddCommand(sitesAddCmd)
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesRenameCmd)
	sitesCmd.AddCommand(sitesDeleteCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("psi-api-key", "", "PageSpeed Insights API key (prefer PAGEPULSE_PSI_API_KEY)")
	rootCmd.PersistentFlags().String("psi-endpoint", contract.DefaultPSIEndpoint, "PageSpeed Insights runPagespeed endpoint")
	rootCmd.PersistentFlags().String("psi-timeout", contract.DefaultPSITimeout.String(), "Hard timeout of one provider call")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string (sqlite path, or e.g. user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User ID that owns sites and runs for CLI and MCP commands")
	rootCmd.PersistentFlags().Int("batch-workers", contract.DefaultBatchWorkers, "Concurrent sites in a batch run")
	rootCmd.PersistentFlags().Float64("batch-qps", contract.DefaultBatchQPS, "Provider calls per second in a batch run (0 disables pacing)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of runs to display")
	rootCmd.PersistentFlags().Int("offset", 0, "Number of runs to skip")
	rootCmd.PersistentFlags().StringP("strategy", "s", "", "Strategy: mobile or desktop")
	rootCmd.PersistentFlags().String("from", "", "Oldest run time in RFC 3339 or time ago")
	rootCmd.PersistentFlags().String("to", "", "Newest run time in RFC 3339 or time ago")
	rootCmd.PersistentFlags().Bool("asc", false, "Sort runs oldest first")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or csv or xlsx or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "Optional rotated log file")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address to listen on")
	serveCmd.Flags().String("jwt-secret", "", "HS256 secret of the identity provider's tokens (prefer PAGEPULSE_JWT_SECRET)")
	serveCmd.Flags().String("cron-secret", "", "Shared secret of the scheduled batch trigger (prefer PAGEPULSE_CRON_SECRET)")
	serveCmd.Flags().String("allowed-origins", "", "Comma-separated CORS origins, or *")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Site flags are read directly from the command
	sitesAddCmd.Flags().String("name", "", "Display name of the site")
	sitesRenameCmd.Flags().String("name", "", "New display name (empty clears it)")
	sitesRenameCmd.Flags().String("url", "", "New URL")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
