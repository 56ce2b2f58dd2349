package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/parquet"
)

// Suffixes appended to the export base name.
const (
	RunsExportSuffix    = ".runs.parquet"
	WindowsExportSuffix = ".windows.parquet"
)

// ExportHistory writes every recorded run and window to two Parquet files
// named after outputFile, reporting progress to w.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no history data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total window records: %d\n", status.TableSizes[windowsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	windows, err := store.GetAllWindows()
	if err != nil {
		return fmt.Errorf("failed to retrieve windows: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + RunsExportSuffix
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetWindows := parquet.ConvertWindowRecords(windows)
	windowsFile := outputFile + WindowsExportSuffix
	if err := parquet.WriteWindowsParquet(parquetWindows, windowsFile); err != nil {
		return fmt.Errorf("failed to write windows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d window records to: %s\n", len(parquetWindows), windowsFile)

	return nil
}
