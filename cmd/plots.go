package cmd

import (
	"github.com/huangsam/co2plot/core"
	"github.com/spf13/cobra"
)

// convertCmd converts raw meter exports.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert raw CO2 meter exports into tabular CSV.",
	Long: `Read every CSV in the measurements directory and write a converted copy with one
timestamped row per reading. Readings are two seconds apart, starting at the time in the title line.

Examples:
  # Convert everything under ./measurements
  co2plot convert

  # Convert from another directory and report as JSON
  co2plot convert --measurements-dir ~/meter --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run:     runExecutor("convert", core.ExecuteConvert),
}

// overviewCmd renders one plot per converted file.
var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Plot every converted measurement file.",
	Long: `Render a CO2 over time plot for each converted file into the plots directory.

Examples:
  co2plot overview
  co2plot overview --plots-dir out/plots`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run:     runExecutor("overview", core.ExecuteOverview),
}

// detailCmd renders the configured windows.
var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Plot the time windows declared in the plot configuration.",
	Long: `Load detailed_plots from the JSON plot configuration, or the CSV fallback, and render
one plot per window into the detailed plots directory. Window statistics are printed afterwards.

The JSON configuration accepts either an array or a mapping keyed by file name:
  {"detailed_plots": [{"file": "Test1.csv", "from": "10:30:00", "length": "02:15"}]}
  {"detailed_plots": {"Test1.csv": {"from": "10:30:00", "length": "02:15"}}}

Examples:
  co2plot detail
  co2plot detail --plot-config windows.json --output csv --output-file windows.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run:     runExecutor("detail", core.ExecuteDetail),
}

// windowsCmd summarizes the configured windows without plotting.
var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Summarize the configured time windows without plotting.",
	Long: `Compute mean, spread and range of CO2 for each configured window and label its air quality.

Examples:
  co2plot windows
  co2plot windows --output parquet --output-file windows.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run:     runExecutor("windows", core.ExecuteWindows),
}
