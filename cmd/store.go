package cmd

import (
	"fmt"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/store"
	"github.com/huangsam/pagepulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads the minimal configuration needed for store maintenance.
// This is used by commands that must not open the store through the manager.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	if backend == schema.MySQLBackend {
		dsn, err := contract.NormalizeMySQLDSN(connStr)
		if err != nil {
			return err
		}
		connStr = dsn
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the run store.",
	Long: `Inspect, migrate, export or clear the database holding sites and runs.

Backends: sqlite (default, ~/.pagepulse.db), mysql, postgresql, none.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// storeStatusCmd prints counts and run time bounds.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show store status.",
	PreRunE: setupWith(contract.Needs{}),
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := store.Global.GetStore().GetStatus(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to get store status: %w", err)
		}
		store.PrintStatus(status)
		return nil
	},
}

// storeClearCmd drops all stored data.
var storeClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Delete all sites and runs.",
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		dbFilePath := ""
		if cfg.StoreBackend == schema.SQLiteBackend {
			dbFilePath = cfg.StoreDBConnect
			if dbFilePath == "" {
				dbFilePath = contract.GetDBFilePath()
			}
		}
		if err := store.ClearStore(cfg.StoreBackend, dbFilePath, cfg.StoreDBConnect); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Printf("Store cleared (%s)\n", cfg.StoreBackend)
		return nil
	},
}

// storeMigrateCmd applies the embedded schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Apply schema migrations.",
	Long:    `Migrate the store schema. --target-version -1 migrates up, 0 rolls back everything, N migrates to version N.`,
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return store.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"))
	},
}

// storeExportCmd writes every stored run to a Parquet file.
var storeExportCmd = &cobra.Command{
	Use:     "export <file.parquet>",
	Short:   "Export all runs to Parquet.",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupWith(contract.Needs{}),
	RunE: func(_ *cobra.Command, args []string) error {
		return store.ExportRuns(rootCtx, store.Global.GetStore(), args[0])
	},
}
