// Package core has core logic for conversion, plotting and window summaries.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/internal/outwriter"
	"github.com/huangsam/co2plot/internal/plotcfg"
	"github.com/huangsam/co2plot/internal/render"
	"github.com/huangsam/co2plot/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ExecuteConvert converts every raw measurement file into the converted directory
// and prints one result per file. A file that fails is reported and skipped.
func ExecuteConvert(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	files, err := measure.ListCSV(cfg.MeasurementsDir)
	if err != nil {
		return fmt.Errorf("failed to list measurements: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files found in %s", cfg.MeasurementsDir)
	}
	if err := os.MkdirAll(cfg.ConvertedDir, 0o755); err != nil {
		return fmt.Errorf("failed to create converted dir: %w", err)
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stderr, schema.ConvertRun, cfg, cfg.MeasurementsDir, len(files))
	}

	run := beginRun(mgr, schema.ConvertRun, cfg)
	results := ConvertAll(ctx, cfg, files)
	run.end(countOK(results))

	return outwriter.PrintFileResults(results, cfg, time.Since(start))
}

// ConvertAll converts files concurrently. Results keep the order of files.
func ConvertAll(ctx context.Context, cfg *contract.Config, files []string) []schema.FileResult {
	log := contract.NewLogger("core")
	return runPool(ctx, cfg.Workers, files, func(ctx context.Context, _ int, name string) schema.FileResult {
		result := schema.FileResult{File: name}
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			return result
		}
		m, out, err := measure.ConvertFile(filepath.Join(cfg.MeasurementsDir, name), cfg.ConvertedDir)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("conversion failed")
			result.Error = err.Error()
			return result
		}
		log.Debug().Str("file", name).Str("output", out).Int("samples", len(m.Samples)).Msg("converted")
		result.Output = out
		result.Samples = len(m.Samples)
		result.Start = m.Day()
		return result
	})
}

// ExecuteOverview renders one overview plot per converted measurement file.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	files, err := measure.ListCSV(cfg.ConvertedDir)
	if err != nil {
		return fmt.Errorf("failed to list converted measurements: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no converted files found in %s. Run convert first", cfg.ConvertedDir)
	}
	if err := os.MkdirAll(cfg.PlotsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create plots dir: %w", err)
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stderr, schema.OverviewRun, cfg, cfg.ConvertedDir, len(files))
	}

	run := beginRun(mgr, schema.OverviewRun, cfg)
	results := RenderOverviews(ctx, cfg, files, start)
	run.end(countOK(results))

	return outwriter.PrintFileResults(results, cfg, time.Since(start))
}

// RenderOverviews draws every converted file into the plots directory.
func RenderOverviews(ctx context.Context, cfg *contract.Config, files []string, stamp time.Time) []schema.FileResult {
	log := contract.NewLogger("core")
	return runPool(ctx, cfg.Workers, files, func(ctx context.Context, _ int, name string) schema.FileResult {
		result := schema.FileResult{File: name}
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			return result
		}
		m, err := measure.ReadConverted(filepath.Join(cfg.ConvertedDir, name))
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Samples = len(m.Samples)
		result.Start = m.Day()
		if len(m.Samples) == 0 {
			log.Warn().Str("file", name).Msg("no samples, skipping overview")
			result.Error = render.ErrNoSamples.Error()
			return result
		}
		path := filepath.Join(cfg.PlotsDir, render.OverviewName(render.Title(m.Name), stamp))
		if err := render.Overview(m, path); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Output = path
		return result
	})
}

// ExecuteDetail renders a detailed plot for every configured window and prints the summaries.
func ExecuteDetail(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeWindows(ctx, cfg, mgr, schema.DetailRun)
}

// ExecuteWindows prints summaries for every configured window without rendering plots.
func ExecuteWindows(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeWindows(ctx, cfg, mgr, schema.WindowsRun)
}

func executeWindows(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, kind schema.RunKind) error {
	start := time.Now()
	summaries, err := GetWindowSummaries(ctx, cfg, mgr, kind)
	if err != nil || summaries == nil {
		return err
	}
	return outwriter.PrintWindowSummaries(summaries, cfg, time.Since(start))
}

// GetWindowSummaries resolves the plot configuration, summarizes every window and records
// the run in history. Detail runs also render plots. It returns nil summaries, and no
// error, when no plot configuration exists.
func GetWindowSummaries(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, kind schema.RunKind) ([]schema.WindowSummary, error) {
	resolved, err := plotcfg.Resolve(cfg.PlotSources())
	if err != nil {
		return nil, fmt.Errorf("failed to load plot configuration: %w", err)
	}
	if len(resolved.Requests) == 0 {
		log := contract.NewLogger("core")
		log.Warn().
			Str("json", cfg.PlotConfig).
			Str("csv", cfg.PlotConfigCSV).
			Msg("no detailed plot configuration found")
		return nil, nil
	}

	renderPlots := kind == schema.DetailRun
	if renderPlots {
		if err := os.MkdirAll(cfg.DetailedPlotsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create detailed plots dir: %w", err)
		}
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stderr, kind, cfg, resolved.Source, len(resolved.Requests))
	}

	run := beginRun(mgr, kind, cfg)
	summaries := SummarizeWindows(ctx, cfg, resolved.Requests, renderPlots)
	run.record(summaries)
	run.end(countRecorded(summaries))
	return summaries, nil
}

func countOK(results []schema.FileResult) int {
	n := 0
	for _, r := range results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

func countRecorded(summaries []schema.WindowSummary) int {
	n := 0
	for _, s := range summaries {
		if !s.Skipped() {
			n++
		}
	}
	return n
}
