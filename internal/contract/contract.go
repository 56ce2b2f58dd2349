// Package contract provides interfaces and shared utilities for co2plot's internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/co2plot/schema"
)

// HistoryManager hands out the history store used by commands.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore tracks command runs and the window summaries they produce.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(kind schema.RunKind, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun marks the run as finished with the number of items it produced
	EndRun(runID int64, endTime time.Time, totalItems int) error

	// RecordWindow stores one window summary for a run
	RecordWindow(runID int64, summary schema.WindowSummary) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllWindows returns every recorded window, in insertion order
	GetAllWindows() ([]schema.WindowRecord, error)

	// Close closes the underlying connection
	Close() error
}
