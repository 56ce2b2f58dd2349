package core

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/internal/plotcfg"
	"github.com/huangsam/co2plot/internal/render"
	"github.com/huangsam/co2plot/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Skip reasons reported on window summaries.
const (
	SkipMissingFile = "converted file not found"
	SkipNoData      = "no data in range"
)

// SummarizeWindows resolves every request against its converted measurement file and
// computes the window statistics. When renderPlots is set, a detailed plot is drawn
// for each window that has data. Summaries keep the order of reqs.
func SummarizeWindows(ctx context.Context, cfg *contract.Config, reqs []schema.PlotWindowRequest, renderPlots bool) []schema.WindowSummary {
	log := contract.NewLogger("core")
	loader := newMeasurementLoader(cfg)
	stamp := time.Now()

	return runPool(ctx, cfg.Workers, reqs, func(ctx context.Context, _ int, req schema.PlotWindowRequest) schema.WindowSummary {
		if err := ctx.Err(); err != nil {
			return skipped(req, err.Error())
		}

		m, err := loader.load(req.File)
		switch {
		case errors.Is(err, measure.ErrNotFound):
			log.Warn().Str("file", req.File).Msg("converted file not found, skipping window")
			return skipped(req, SkipMissingFile)
		case err != nil:
			log.Warn().Err(err).Str("file", req.File).Msg("failed to read converted file")
			return skipped(req, err.Error())
		}

		window := req.Window(m.Day())
		samples := SliceWindow(m, window)
		if len(samples) == 0 {
			log.Warn().
				Str("file", req.File).
				Time("start", window.Start).
				Time("end", window.End).
				Msg("no data in the specified time range")
			summary := skipped(req, SkipNoData)
			summary.Start, summary.End = window.Start, window.End
			return summary
		}

		summary := Summarize(req, window, samples)
		if renderPlots {
			path := filepath.Join(cfg.DetailedPlotsDir, render.DetailName(render.Title(req.File), req.From, stamp))
			if err := render.Detail(samples, req, path); err != nil {
				log.Warn().Err(err).Str("file", req.File).Msg("failed to render detailed plot")
			} else {
				summary.PlotPath = path
			}
		}
		return summary
	})
}

// SliceWindow returns the samples of m that fall inside w, bounds included.
func SliceWindow(m *schema.Measurement, w schema.TimeWindow) []schema.Sample {
	var out []schema.Sample
	for _, s := range m.Samples {
		if w.Contains(s.Time) {
			out = append(out, s)
		}
	}
	return out
}

// Summarize computes the statistics of a non-empty window.
func Summarize(req schema.PlotWindowRequest, w schema.TimeWindow, samples []schema.Sample) schema.WindowSummary {
	co2 := make([]float64, len(samples))
	temps := make([]float64, len(samples))
	for i, s := range samples {
		co2[i] = s.CO2
		temps[i] = s.Temperature
	}

	summary := schema.WindowSummary{
		File:    req.File,
		From:    req.From.String(),
		Length:  plotcfg.FormatLength(req.Length),
		Start:   w.Start,
		End:     w.End,
		Samples: len(samples),
	}
	if len(samples) == 0 {
		summary.SkipReason = SkipNoData
		return summary
	}

	summary.MeanCO2 = stat.Mean(co2, nil)
	if len(co2) > 1 {
		summary.StdDevCO2 = stat.StdDev(co2, nil)
	}
	summary.MinCO2 = floats.Min(co2)
	summary.MaxCO2 = floats.Max(co2)
	summary.MeanTemp = stat.Mean(temps, nil)
	summary.Quality = schema.ClassifyCO2(summary.MeanCO2)
	return summary
}

func skipped(req schema.PlotWindowRequest, reason string) schema.WindowSummary {
	return schema.WindowSummary{
		File:       req.File,
		From:       req.From.String(),
		Length:     plotcfg.FormatLength(req.Length),
		SkipReason: reason,
	}
}

// measurementLoader reads each converted file at most once, even when several
// windows point at it from different workers.
type measurementLoader struct {
	mu    sync.Mutex
	cfg   *contract.Config
	loads map[string]func() (*schema.Measurement, error)
}

func newMeasurementLoader(cfg *contract.Config) *measurementLoader {
	return &measurementLoader{cfg: cfg, loads: make(map[string]func() (*schema.Measurement, error))}
}

func (l *measurementLoader) load(file string) (*schema.Measurement, error) {
	l.mu.Lock()
	fn, ok := l.loads[file]
	if !ok {
		path := l.cfg.ConvertedPath(file)
		fn = sync.OnceValues(func() (*schema.Measurement, error) {
			return measure.ReadConverted(path)
		})
		l.loads[file] = fn
	}
	l.mu.Unlock()
	return fn()
}

// runPool applies fn to every item using a fixed number of workers.
// Each worker writes to its own index, so results keep the order of items.
func runPool[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, int, T) R) []R {
	results := make([]R, len(items))
	idxCh := make(chan int, len(items))
	var wg sync.WaitGroup

	for range max(workers, 1) {
		wg.Go(func() {
			for idx := range idxCh {
				results[idx] = fn(ctx, idx, items[idx])
			}
		})
	}

	for i := range items {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return results
}
