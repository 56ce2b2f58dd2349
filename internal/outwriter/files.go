package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFileResults outputs convert or overview results. Parquet has no file-result
// layout, so that mode prints the table to stdout instead.
func PrintFileResults(results []schema.FileResult, cfg *contract.Config, duration time.Duration) error {
	outputFile := cfg.OutputFile
	successMsg := "Wrote table"
	switch cfg.Output {
	case schema.JSONOut:
		successMsg = "Wrote JSON"
	case schema.CSVOut:
		successMsg = "Wrote CSV"
	case schema.ParquetOut:
		outputFile = ""
	}
	return writeWithFile(outputFile, func(w io.Writer) error {
		return WriteFileResults(w, results, cfg, duration)
	}, successMsg)
}

// WriteFileResults writes file results to w as text, CSV or JSON.
func WriteFileResults(w io.Writer, results []schema.FileResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, results); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeFileCSV(w, results); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeFileTable(w, results, cfg, duration)
	}
	return nil
}

// writeFileTable generates and writes the human-readable table.
func writeFileTable(w io.Writer, results []schema.FileResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "File", "Samples", "Start", "Output"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, fileColumnsWidth)
	var data [][]string
	failed := 0
	for i, r := range results {
		output := contract.TruncatePath(r.Output, pathWidth)
		if r.Failed() {
			failed++
			output = r.Error
			if cfg.UseColors {
				output = contract.PoorColor.Sprint(r.Error)
			}
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.File, pathWidth),
			strconv.Itoa(r.Samples),
			formatTime(r.Start),
			output,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Processed %d files (%d failed)\n", len(results), failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeFileCSV writes file results in CSV format.
func writeFileCSV(w io.Writer, results []schema.FileResult) error {
	header := []string{"index", "file", "samples", "start", "output", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range results {
			rec := []string{
				strconv.Itoa(i + 1),
				r.File,
				strconv.Itoa(r.Samples),
				formatTime(r.Start),
				r.Output,
				r.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
