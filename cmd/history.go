package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyCmd groups run history maintenance.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the run history and exports",
	Long: `Manage the record of past runs and the window statistics they produced.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := historySetup(cmd, args); err != nil {
			return err
		}
		return history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := history.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd removes all history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs and window statistics",
	Long: `Delete all stored runs and window statistics.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ClearHistory(cfg.HistoryBackend, "", cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd writes history to parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to Parquet for BI tools and analytics",
	Long: `Export stored runs and window statistics as two Parquet files derived from --output-file.

Examples:
  co2plot history export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.windows.parquet')"`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := historySetup(cmd, args); err != nil {
			return err
		}
		return history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExportHistory(os.Stdout, history.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd applies schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the history store",
	Long: `Apply or roll back the embedded schema migrations.

Examples:
  # Migrate to latest
  co2plot history migrate

  # Roll back everything
  co2plot history migrate --target-version 0`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		connStr := cfg.HistoryDBConnect
		if connStr == "" {
			connStr = contract.GetHistoryDBFilePath()
		}
		if err := history.MigrateHistory(cfg.HistoryBackend, connStr, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
	},
}
