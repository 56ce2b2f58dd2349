//go:build integration || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a co2plot binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the co2plot binary, building it once if needed.
func getBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "co2plot-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "co2plot")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build co2plot: %v", err))
		}

		sharedBinaryPath = binPath
	})

	return sharedBinaryPath
}

// rawExport is a meter export starting at 10:29:58 with one reading every two seconds.
const rawExport = `CO2 Meter Log 2024.03.05 10:29:58 END
CO2: 700,Temp: 21.0,Max CO2: 710,Min CO2: 690
CO2: 1500,Temp: 21.5,Max CO2: 1510,Min CO2: 1490
CO2: 1520,Temp: 21.6,Max CO2: 1530,Min CO2: 1500
CO2: 1540,Temp: 21.7,Max CO2: 1550,Min CO2: 1520
`

// newDataDir lays out measurements and a plot configuration in a temp directory.
func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "measurements"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "measurements", "Test1.csv"), []byte(rawExport), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.json"), []byte(`{
  "detailed_plots": {
    "Test1.csv": {"from": "10:30:00", "length": "00:01"},
    "Missing.csv": {"from": "08:00:00", "length": "00:30"}
  }
}`), 0o644))
	return dir
}

// runCommand runs co2plot in dir and returns its stdout.
func runCommand(t *testing.T, dir string, env []string, args ...string) ([]byte, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stderr []byte
	out, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		stderr = exitErr.Stderr
	}
	if err != nil {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), string(stderr))
	}
	return out, err
}
