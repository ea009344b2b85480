package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/iocache"
	"github.com/huangsam/tsfeat/internal/outwriter"
	"github.com/huangsam/tsfeat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsConfig reads the run tracking backend and connection string.
// An empty backend is treated as NoneBackend.
func runsConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run tracking operations.
// This is used by commands that need run store access without full shared setup.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no result cache for runs commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsMaintenanceSetup loads configuration for clear and migrate. It does NOT
// initialize stores or create tables, so migrations can run on a fresh database.
func runsMaintenanceSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsCmd focused on run tracking data management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage extraction run tracking and exports",
	Long: `Manage the history of grouped extraction runs.

When enabled with --runs-backend, tsfeat records every grouped extraction:
- Run metadata (timestamp, configuration, duration, group totals)
- The outcome of every group (ok or failed, feature count, error message)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  tsfeat runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  tsfeat runs export --runs-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run tracking data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run tracking data",
	Long: `Delete all stored extraction runs and group outcomes.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  tsfeat runs export --output-file backup
  tsfeat runs clear`,
	PreRunE: runsMaintenanceSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, cfg.RunsDBConnect, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about extraction run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total groups traced across all runs
- Database table sizes

Examples:
  # Check run tracking status
  tsfeat runs status --runs-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		if err := outwriter.PrintRunStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to print run status", err)
		}
	},
}

// runsExportCmd exports run tracking data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format for use with analytics tools.

Exports two datasets named after the --output-file prefix:
- <prefix>.extraction_runs.parquet - metadata about each run
- <prefix>.group_outcomes.parquet - the outcome of every group

Requires: --output-file parameter

Examples:
  # Export all data
  tsfeat runs export --output-file tsfeat-runs

  # Use with DuckDB for analysis
  duckdb -c "SELECT status, COUNT(*) FROM read_parquet('tsfeat-runs.group_outcomes.parquet') GROUP BY 1"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportRuns(iocache.Manager.GetRunStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  tsfeat runs migrate --runs-backend sqlite

  # Migrate to specific version
  tsfeat runs migrate --target-version 2

  # Rollback to initial state
  tsfeat runs migrate --target-version 0`,
	PreRunE: runsMaintenanceSetup,
	Run: func(_ *cobra.Command, _ []string) {
		msg, err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(msg)
	},
}
