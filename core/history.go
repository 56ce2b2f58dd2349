package core

import (
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/schema"
)

// runTracker closes a history run. A zero tracker does nothing.
type runTracker struct {
	store contract.HistoryStore
	id    int64
}

// beginRun opens a history run when a store is configured.
// Tracking failures are logged, never fatal.
func beginRun(mgr contract.HistoryManager, kind schema.RunKind, cfg *contract.Config) runTracker {
	if mgr == nil {
		return runTracker{}
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return runTracker{}
	}

	configParams := map[string]any{
		"measurements_dir": cfg.MeasurementsDir,
		"converted_dir":    cfg.ConvertedDir,
		"plot_config":      cfg.PlotConfig,
		"plot_config_csv":  cfg.PlotConfigCSV,
		"workers":          cfg.Workers,
		"output":           string(cfg.Output),
	}
	runID, err := store.BeginRun(kind, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return runTracker{}
	}
	if runID <= 0 {
		return runTracker{}
	}
	return runTracker{store: store, id: runID}
}

// end finalizes the run with the number of items it produced.
func (rt runTracker) end(totalItems int) {
	if rt.store == nil {
		return
	}
	if err := rt.store.EndRun(rt.id, time.Now(), totalItems); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// record stores the window summaries of the run. Skipped windows are left out by the store.
func (rt runTracker) record(summaries []schema.WindowSummary) {
	if rt.store == nil {
		return
	}
	for _, s := range summaries {
		if err := rt.store.RecordWindow(rt.id, s); err != nil {
			contract.LogWarn("Failed to record window for "+s.File, err)
		}
	}
}
