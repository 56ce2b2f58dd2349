// Package render draws CO2 time series as PNG plots with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/internal/plotcfg"
	"github.com/huangsam/co2plot/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// StampLayout formats the render time appended to plot file names.
const StampLayout = "20060102_150405"

// Plot dimensions.
const (
	plotWidth  = 12 * vg.Inch
	plotHeight = 8 * vg.Inch
)

// ErrNoSamples is returned when there is nothing to draw.
var ErrNoSamples = errors.New("no samples to plot")

var (
	overviewColor = color.RGBA{B: 255, A: 255}
	detailColor   = color.RGBA{R: 255, A: 255}
)

// Title derives the plot title of a measurement file: its base name without
// the converted_ prefix or the extension.
func Title(file string) string {
	base := strings.TrimPrefix(filepath.Base(file), measure.ConvertedPrefix)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OverviewName returns the file name of an overview plot.
func OverviewName(title string, stamp time.Time) string {
	return fmt.Sprintf("co2_plot_%s_%s.png", title, stamp.Format(StampLayout))
}

// DetailName returns the file name of a detailed plot.
func DetailName(title string, from schema.TimeOfDay, stamp time.Time) string {
	return fmt.Sprintf("detailed_co2_plot_%s_%s_%s.png", title, strings.ReplaceAll(from.String(), ":", ""), stamp.Format(StampLayout))
}

// Overview draws every sample of a measurement to path.
func Overview(m *schema.Measurement, path string) error {
	p := newPlot(fmt.Sprintf("CO2 Levels Over Time - %s", Title(m.Name)), m.Day())
	if err := addSeries(p, m.Samples, overviewColor); err != nil {
		return err
	}
	return save(p, path)
}

// Detail draws the samples of one plot window to path.
func Detail(samples []schema.Sample, req schema.PlotWindowRequest, path string) error {
	var day time.Time
	if len(samples) > 0 {
		day = samples[0].Time
	}
	title := fmt.Sprintf("Detailed CO2 Levels - %s (%s - %s)", Title(req.File), req.From, plotcfg.FormatLength(req.Length))
	p := newPlot(title, day)
	if err := addSeries(p, samples, detailColor); err != nil {
		return err
	}
	return save(p, path)
}

// newPlot sets up the shared axes: time of day on X, ppm on Y.
func newPlot(title string, day time.Time) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time - " + day.Format("2006.01.02")
	p.Y.Label.Text = "CO2 Levels (ppm)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())
	return p
}

func addSeries(p *plot.Plot, samples []schema.Sample, c color.Color) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = float64(s.Time.Unix())
		pts[i].Y = s.CO2
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build series: %w", err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	points.Shape = draw.CircleGlyph{}
	points.Color = c
	points.Radius = vg.Points(2)

	p.Add(line, points)
	p.Legend.Add("CO2", line, points)
	p.Legend.Top = true
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
