// Package schema has models and shared constants for all parts of co2plot.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a single day, stored as an offset from midnight.
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay from its components. Callers are expected to pass
// values already validated against 0-23 / 0-59 / 0-59.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// Clock returns the hour, minute and second components.
func (t TimeOfDay) Clock() (hour, minute, second int) {
	secs := int(time.Duration(t) / time.Second)
	return secs / 3600, (secs % 3600) / 60, secs % 60
}

// String renders the time as zero-padded HH:MM:SS.
func (t TimeOfDay) String() string {
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// MarshalText implements encoding.TextMarshaler so JSON output shows HH:MM:SS.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// On anchors the time of day to the calendar date of day, keeping its location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(t))
}

// PlotWindowRequest asks for a detailed plot of one measurement file.
// Requests are built once from the plot configuration and never mutated afterwards.
type PlotWindowRequest struct {
	File   string        `json:"file"`   // Source measurement file name, e.g. Test3.csv
	From   TimeOfDay     `json:"from"`   // Start of the window on the measurement day
	Length time.Duration `json:"length"` // Window length, whole minutes
}

// MarshalJSON writes From as HH:MM:SS and Length as HH:MM, the same text
// the plot configuration uses.
func (r PlotWindowRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File   string `json:"file"`
		From   string `json:"from"`
		Length string `json:"length"`
	}{r.File, r.From.String(), FormatLength(r.Length)})
}

// FormatLength renders a duration as zero-padded HH:MM, dropping seconds.
func FormatLength(d time.Duration) string {
	mins := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Window resolves the request against the day a measurement was taken.
func (r PlotWindowRequest) Window(day time.Time) TimeWindow {
	start := r.From.On(day)
	return TimeWindow{Start: start, End: start.Add(r.Length)}
}

// TimeWindow is an inclusive [Start, End] time range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts lies inside the window, bounds included.
func (w TimeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// Sample is a single CO2 meter reading.
type Sample struct {
	CO2         float64   `json:"co2_ppm"`
	Temperature float64   `json:"temperature_c"`
	MaxCO2      float64   `json:"max_co2_ppm"`
	MinCO2      float64   `json:"min_co2_ppm"`
	Time        time.Time `json:"time"`
}

// Measurement is one measurement file after parsing.
type Measurement struct {
	Name    string   // File name without directory, e.g. Test3.csv
	Title   string   // Title line of the raw file, empty for converted files
	Samples []Sample // Readings in file order
}

// Day returns the timestamp of the first sample, or the zero time when there are none.
func (m *Measurement) Day() time.Time {
	if len(m.Samples) == 0 {
		return time.Time{}
	}
	return m.Samples[0].Time
}

// WindowSummary holds the statistics for one resolved plot window.
type WindowSummary struct {
	File       string     `json:"file"`
	From       string     `json:"from"`
	Length     string     `json:"length"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Samples    int        `json:"samples"`
	MeanCO2    float64    `json:"mean_co2_ppm"`
	StdDevCO2  float64    `json:"stddev_co2_ppm"`
	MinCO2     float64    `json:"min_co2_ppm"`
	MaxCO2     float64    `json:"max_co2_ppm"`
	MeanTemp   float64    `json:"mean_temperature_c"`
	Quality    AirQuality `json:"quality"`
	PlotPath   string     `json:"plot_path,omitempty"`
	SkipReason string     `json:"skip_reason,omitempty"`
}

// Skipped reports whether the window produced no data.
func (s WindowSummary) Skipped() bool {
	return s.SkipReason != ""
}

// FileResult reports what happened to one measurement file during convert or overview.
type FileResult struct {
	File    string    `json:"file"`
	Output  string    `json:"output,omitempty"` // Converted CSV or rendered PNG
	Samples int       `json:"samples"`
	Start   time.Time `json:"start"`
	Error   string    `json:"error,omitempty"`
}

// Failed reports whether the file could not be processed.
func (r FileResult) Failed() bool {
	return r.Error != ""
}
