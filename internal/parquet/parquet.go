// Package parquet provides data structures and functions for exporting co2plot
// window summaries and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/co2plot/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single co2plot command run with metadata.
// This struct maps to the co2plot_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Kind is the command that produced the run (convert, overview, detail, windows)
	Kind string `parquet:"kind,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalItems is the number of files or windows the run produced
	TotalItems int32 `parquet:"total_items,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Window represents one summarized plot window recorded for a run.
// This struct maps to the co2plot_windows database table.
type Window struct {
	RunID      int64     `parquet:"run_id,snappy"`
	File       string    `parquet:"file,snappy,dict"`
	FromTime   string    `parquet:"from_time,snappy"`
	Length     string    `parquet:"length,snappy"`
	WindowFrom time.Time `parquet:"window_from,snappy"`
	WindowTo   time.Time `parquet:"window_to,snappy"`
	Samples    int32     `parquet:"samples,snappy"`
	MeanCO2    float64   `parquet:"mean_co2_ppm,snappy"`
	StdDevCO2  float64   `parquet:"stddev_co2_ppm,snappy"`
	MinCO2     float64   `parquet:"min_co2_ppm,snappy"`
	MaxCO2     float64   `parquet:"max_co2_ppm,snappy"`
	MeanTemp   float64   `parquet:"mean_temperature_c,snappy"`
	Quality    string    `parquet:"quality,snappy,dict"`
	PlotPath   *string   `parquet:"plot_path,optional,snappy"`
}

// Summary is a window summary as produced by the windows command, skipped windows included.
type Summary struct {
	File       string    `parquet:"file,snappy,dict"`
	FromTime   string    `parquet:"from_time,snappy"`
	Length     string    `parquet:"length,snappy"`
	WindowFrom time.Time `parquet:"window_from,snappy"`
	WindowTo   time.Time `parquet:"window_to,snappy"`
	Samples    int32     `parquet:"samples,snappy"`
	MeanCO2    float64   `parquet:"mean_co2_ppm,snappy"`
	StdDevCO2  float64   `parquet:"stddev_co2_ppm,snappy"`
	MinCO2     float64   `parquet:"min_co2_ppm,snappy"`
	MaxCO2     float64   `parquet:"max_co2_ppm,snappy"`
	MeanTemp   float64   `parquet:"mean_temperature_c,snappy"`
	Quality    *string   `parquet:"quality,optional,snappy"`
	PlotPath   *string   `parquet:"plot_path,optional,snappy"`
	SkipReason *string   `parquet:"skip_reason,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteWindowsParquet writes a slice of Window structs to a Parquet file.
func WriteWindowsParquet(data []Window, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSummariesParquet writes a slice of Summary structs to a Parquet file.
func WriteSummariesParquet(data []Summary, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet derives the schema from the struct tags of T and writes every row.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Kind:          record.Kind,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalItems:    record.TotalItems,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertWindowRecords converts schema.WindowRecord to Window for Parquet export.
func ConvertWindowRecords(records []schema.WindowRecord) []Window {
	result := make([]Window, len(records))
	for i, record := range records {
		result[i] = Window{
			RunID:      record.RunID,
			File:       record.File,
			FromTime:   record.FromTime,
			Length:     record.Length,
			WindowFrom: record.WindowFrom,
			WindowTo:   record.WindowTo,
			Samples:    record.Samples,
			MeanCO2:    record.MeanCO2,
			StdDevCO2:  record.StdDevCO2,
			MinCO2:     record.MinCO2,
			MaxCO2:     record.MaxCO2,
			MeanTemp:   record.MeanTemp,
			Quality:    record.Quality,
			PlotPath:   record.PlotPath,
		}
	}
	return result
}

// ConvertWindowSummaries converts schema.WindowSummary to Summary for Parquet export.
func ConvertWindowSummaries(summaries []schema.WindowSummary) []Summary {
	result := make([]Summary, len(summaries))
	for i, s := range summaries {
		result[i] = Summary{
			File:       s.File,
			FromTime:   s.From,
			Length:     s.Length,
			WindowFrom: s.Start,
			WindowTo:   s.End,
			Samples:    int32(s.Samples),
			MeanCO2:    s.MeanCO2,
			StdDevCO2:  s.StdDevCO2,
			MinCO2:     s.MinCO2,
			MaxCO2:     s.MaxCO2,
			MeanTemp:   s.MeanTemp,
			Quality:    optional(string(s.Quality)),
			PlotPath:   optional(s.PlotPath),
			SkipReason: optional(s.SkipReason),
		}
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
