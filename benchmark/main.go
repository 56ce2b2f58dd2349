// Package main times the co2plot CLI across its commands.
// Each command runs several times per history backend. The first successful run counts as
// cold and the rest are averaged as warm. Results are written as CSV for documentation.
//
// Prerequisites:
// - co2plot binary installed and available in PATH
// - A data directory holding measurements/ and cfg.json
//
// Usage: go run benchmark/main.go [data-dir]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the cold run and the warm average for one command and backend.
type BenchmarkResult struct {
	Command  string
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Commands []string
	Backends []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataDir:  os.Args[1],
		Timeout:  5 * time.Minute,
		Workers:  8,
		Runs:     4,
		Commands: []string{"convert", "overview", "windows", "detail"},
		Backends: []string{"none", "sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)
	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// checkPrerequisites verifies that the co2plot binary and the data directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("co2plot"); err != nil {
		return fmt.Errorf("co2plot binary not found in PATH")
	}
	measurements := filepath.Join(config.DataDir, "measurements")
	if _, err := os.Stat(measurements); os.IsNotExist(err) {
		return fmt.Errorf("measurements not found at %s", measurements)
	}
	return nil
}

// runBenchmarks executes every command against every backend
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d commands, %v timeout, %d workers, %d runs\n",
		len(config.Commands), config.Timeout, config.Workers, config.Runs)

	for _, command := range config.Commands {
		for _, backend := range config.Backends {
			fmt.Printf("Running %s with %s history\n", command, backend)
			cold, warm := runBenchmark(config, command, backend)
			result := BenchmarkResult{Command: command, Backend: backend, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
			if cold > 0 {
				result.ColdTime = fmt.Sprintf("%.3fs", cold)
			}
			if len(warm) > 0 {
				var sum float64
				for _, t := range warm {
					sum += t
				}
				result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
			}
			fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
			results = append(results, result)
		}
	}
	return results
}

// runBenchmark executes one command several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, backend string) (coldTime float64, warmTimes []float64) {
	args := []string{command,
		"--history-backend", backend,
		"--workers", fmt.Sprint(config.Workers),
		"--output", "csv",
		"--output-file", os.DevNull,
	}

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("co2plot", args...)
		cmd.Dir = config.DataDir

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("/tmp/co2plot_benchmark_%s.csv", time.Now().Format("20060102_150405"))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cmd", "history", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Command, r.Backend, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-9s %-7s: Cold: %s, Warm: %s\n", r.Command, r.Backend, r.ColdTime, r.WarmTime)
	}
}
