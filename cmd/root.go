package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/logging"
	"github.com/huangsam/pagepulse/internal/metrics"
	"github.com/huangsam/pagepulse/internal/psiclient"
	"github.com/huangsam/pagepulse/internal/store"
	"github.com/huangsam/pagepulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations. It is cancelled on SIGINT/SIGTERM.
var rootCtx, stopSignals = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is the process logger, created by sharedSetup.
var logger *logging.Logger

// recorder holds the Prometheus collectors of this process.
var recorder = metrics.New(true)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "pagepulse",
	Short:              "Audit web pages with PageSpeed Insights and track their Core Web Vitals.",
	Long:               `PagePulse runs PageSpeed audits, normalizes the results into a small metric set and keeps a bounded history per site.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		store.CloseStore()
		if logger != nil {
			_ = logger.Close()
		}
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".pagepulse") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("PAGEPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("psi-endpoint", contract.DefaultPSIEndpoint)
	viper.SetDefault("psi-timeout", contract.DefaultPSITimeout.String())
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("listen", contract.DefaultListen)
	viper.SetDefault("limit", contract.DefaultHistoryLimit)
	viper.SetDefault("batch-workers", contract.DefaultBatchWorkers)
	viper.SetDefault("batch-qps", contract.DefaultBatchQPS)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("color", "yes")
}

// loadConfigFile reads the config file when present.
// A missing file is fine; we'll use defaults/env/flags.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the store.
func sharedSetup(needs contract.Needs) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// Missing required settings fail here instead of on the first request.
	if err := contract.ProcessAndValidate(cfg, input, needs, time.Now()); err != nil {
		return err
	}

	// 4. Build the logger.
	l, err := logging.New(logging.LogConfig{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger = l

	// 5. Initialize persistence layer with validated config
	if err := store.InitStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// setupWith returns a PreRunE that runs sharedSetup with needs.
func setupWith(needs contract.Needs) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		return sharedSetup(needs)
	}
}

// newAuditor wires the provider, the global store, logging and metrics.
func newAuditor() *core.Auditor {
	provider := psiclient.New(cfg.PSIEndpoint, cfg.PSIAPIKey, psiclient.WithTimeout(cfg.PSITimeout))
	return core.NewAuditor(provider, store.Global.GetStore(),
		core.WithLogger(logger.Component("core")),
		core.WithMetrics(recorder),
		core.WithBatch(cfg.BatchWorkers, cfg.BatchQPS),
	)
}

// currentUser is the CLI identity.
func currentUser() schema.User {
	return schema.User{ID: cfg.User}
}

// Execute runs the root command.
func Execute() error {
	defer stopSignals()
	return rootCmd.Execute()
}
