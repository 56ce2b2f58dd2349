package schema

import "time"

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	Database      string           `json:"database,omitempty"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalItems    int              `json:"total_items"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the co2plot_runs table.
type RunRecord struct {
	RunID         int64
	Kind          string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalItems    int32
	ConfigParams  *string
}

// WindowRecord represents a row from the co2plot_windows table.
type WindowRecord struct {
	RunID      int64
	File       string
	FromTime   string
	Length     string
	WindowFrom time.Time
	WindowTo   time.Time
	Samples    int32
	MeanCO2    float64
	StdDevCO2  float64
	MinCO2     float64
	MaxCO2     float64
	MeanTemp   float64
	Quality    string
	PlotPath   *string
}
