//go:build integration

// Package integration contains integration tests for co2plot.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type windowRow struct {
	Index      int     `json:"index"`
	File       string  `json:"file"`
	From       string  `json:"from"`
	Length     string  `json:"length"`
	Samples    int     `json:"samples"`
	MeanCO2    float64 `json:"mean_co2_ppm"`
	Quality    string  `json:"quality"`
	PlotPath   string  `json:"plot_path"`
	SkipReason string  `json:"skip_reason"`
}

// TestPipelineVerification converts, plots and summarizes a small export end to end.
func TestPipelineVerification(t *testing.T) {
	dir := newDataDir(t)
	env := []string{"CO2PLOT_HISTORY_BACKEND=none", "CO2PLOT_COLOR=no"}

	_, err := runCommand(t, dir, env, "convert")
	require.NoError(t, err)
	converted, err := os.ReadFile(filepath.Join(dir, "converted_measurements", "converted_Test1.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(converted), "1500,21.5,1510,1490,2024.03.05 10:30:00")

	_, err = runCommand(t, dir, env, "overview")
	require.NoError(t, err)
	plots, err := filepath.Glob(filepath.Join(dir, "plots", "*.png"))
	require.NoError(t, err)
	assert.Len(t, plots, 1)

	out, err := runCommand(t, dir, env, "detail", "--output", "json")
	require.NoError(t, err)

	var rows []windowRow
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)

	// Mapping keys keep document order.
	assert.Equal(t, "Test1.csv", rows[0].File)
	assert.Equal(t, "10:30:00", rows[0].From)
	assert.Equal(t, "00:01", rows[0].Length)
	assert.Equal(t, 3, rows[0].Samples)
	assert.InDelta(t, 1520.0, rows[0].MeanCO2, 0.001)
	assert.Equal(t, "Poor", rows[0].Quality)
	assert.FileExists(t, filepath.Join(dir, rows[0].PlotPath))

	assert.Equal(t, "Missing.csv", rows[1].File)
	assert.NotEmpty(t, rows[1].SkipReason)
}

// TestInvalidConfigFails checks that a malformed window fails the run with the entry named.
func TestInvalidConfigFails(t *testing.T) {
	dir := newDataDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.json"),
		[]byte(`{"detailed_plots":[{"file":"Test1.csv","from":"10:61:00","length":"00:01"}]}`), 0o644))

	_, err := runCommand(t, dir, []string{"CO2PLOT_HISTORY_BACKEND=none"}, "windows")
	assert.Error(t, err)
}
