package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/parquet"
	"github.com/huangsam/co2plot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// windowCSVHeader lists the CSV columns of a window summary.
var windowCSVHeader = []string{
	"index",
	"file",
	"from",
	"length",
	"start",
	"end",
	"samples",
	"mean_co2_ppm",
	"stddev_co2_ppm",
	"min_co2_ppm",
	"max_co2_ppm",
	"mean_temperature_c",
	"quality",
	"plot_path",
	"skip_reason",
}

// PrintWindowSummaries outputs window summaries, dispatching based on the output format configured.
func PrintWindowSummaries(summaries []schema.WindowSummary, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if err := parquet.WriteSummariesParquet(parquet.ConvertWindowSummaries(summaries), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	}

	successMsg := map[schema.OutputMode]string{
		schema.JSONOut: "Wrote JSON",
		schema.CSVOut:  "Wrote CSV",
	}[cfg.Output]
	if successMsg == "" {
		successMsg = "Wrote table"
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteWindowSummaries(w, summaries, cfg, duration)
	}, successMsg)
}

// WriteWindowSummaries writes summaries to w as text, CSV or JSON.
func WriteWindowSummaries(w io.Writer, summaries []schema.WindowSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWindowJSON(w, summaries); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWindowCSV(w, summaries, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWindowTable(w, summaries, cfg, fmtFloat, intFmt, duration)
	}
	return nil
}

// writeWindowTable generates and writes the human-readable table.
func writeWindowTable(w io.Writer, summaries []schema.WindowSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	showPlots := false
	for _, s := range summaries {
		if s.PlotPath != "" {
			showPlots = true
			break
		}
	}

	headers := []string{"#", "File", "From", "Length", "Samples", "Mean", "StdDev", "Min", "Max", "Temp", "Quality"}
	if showPlots {
		headers = append(headers, "Plot")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, windowColumnsWidth)
	var data [][]string
	var recorded, totalSamples int
	for i, s := range summaries {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(s.File, pathWidth),
			s.From,
			s.Length,
		}
		if s.Skipped() {
			row = append(row, "-", "-", "-", "-", "-", "-", skipLabel(s.SkipReason, cfg.UseColors))
		} else {
			recorded++
			totalSamples += s.Samples
			row = append(row,
				fmt.Sprintf(intFmt, s.Samples),
				fmtFloat(s.MeanCO2),
				fmtFloat(s.StdDevCO2),
				fmtFloat(s.MinCO2),
				fmtFloat(s.MaxCO2),
				fmtFloat(s.MeanTemp),
				labelFor(s.Quality, cfg.UseColors),
			)
		}
		if showPlots {
			row = append(row, contract.TruncatePath(s.PlotPath, pathWidth))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d windows (%d with data, %d samples)\n", len(summaries), recorded, totalSamples); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeWindowCSV writes the summaries in CSV format.
func writeWindowCSV(w io.Writer, summaries []schema.WindowSummary, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, windowCSVHeader, func(cw *csv.Writer) error {
		for i, s := range summaries {
			rec := []string{
				strconv.Itoa(i + 1),
				s.File,
				s.From,
				s.Length,
				formatTime(s.Start),
				formatTime(s.End),
				fmt.Sprintf(intFmt, s.Samples),
				fmtFloat(s.MeanCO2),
				fmtFloat(s.StdDevCO2),
				fmtFloat(s.MinCO2),
				fmtFloat(s.MaxCO2),
				fmtFloat(s.MeanTemp),
				string(s.Quality),
				s.PlotPath,
				s.SkipReason,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeWindowJSON writes the summaries in JSON format.
func writeWindowJSON(w io.Writer, summaries []schema.WindowSummary) error {
	type JSONWindowSummary struct {
		Index int `json:"index"`
		schema.WindowSummary
	}

	output := make([]JSONWindowSummary, len(summaries))
	for i, s := range summaries {
		output[i] = JSONWindowSummary{Index: i + 1, WindowSummary: s}
	}
	return writeJSON(w, output)
}

// labelFor renders an air quality label, colored for terminals when enabled.
func labelFor(quality schema.AirQuality, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(quality)
	}
	return string(quality)
}

// skipLabel renders the reason a window was skipped.
func skipLabel(reason string, useColors bool) string {
	if useColors {
		return contract.SkippedColor.Sprint(reason)
	}
	return reason
}
