// Package main times the fm301check CLI over a directory of radar files.
// Each file is validated several times per sweep mode, with run history
// disabled and with the SQLite backend, and the timings are written to CSV.
//
// Prerequisites:
// - fm301check binary installed and available in PATH
// - A schema document reachable through --schema or .fm301check.yaml
//
// Usage: go run ./benchmark [data-dir]
//
//	data-dir: Directory containing .nc files or metadata dumps
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one file and sweep mode.
type BenchmarkResult struct {
	File        string
	Mode        string
	NoHistory   string
	WithHistory string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir string
	Timeout time.Duration
	Runs    int
	Modes   []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataDir: os.Args[1],
		Timeout: 2 * time.Minute,
		Runs:    5,
		Modes:   []string{"o", "f"},
	}

	files, err := findDataFiles(config.DataDir)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, files)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// findDataFiles checks that fm301check is available and lists the data files.
func findDataFiles(dir string) ([]string, error) {
	if _, err := exec.LookPath("fm301check"); err != nil {
		return nil, fmt.Errorf("fm301check binary not found in PATH")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".nc", ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dir)
	}
	return files, nil
}

// runBenchmarks times every file in every sweep mode.
func runBenchmarks(config BenchmarkConfig, files []string) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d files, %v timeout, %d runs per phase\n", len(files), config.Timeout, config.Runs)

	workDir, err := os.MkdirTemp("", "fm301check-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	var results []BenchmarkResult
	for _, file := range files {
		for _, mode := range config.Modes {
			fmt.Printf("Benchmarking %s (mode %s)\n", filepath.Base(file), mode)
			noHistory := average(runBenchmark(config, workDir, file, mode, nil))
			withHistory := average(runBenchmark(config, workDir, file, mode, []string{
				"FM301CHECK_HISTORY_BACKEND=sqlite",
				"FM301CHECK_HISTORY_DB_CONNECT=" + filepath.Join(workDir, "history.db"),
			}))
			fmt.Printf("  No history: %s, SQLite history: %s\n", noHistory, withHistory)
			results = append(results, BenchmarkResult{
				File:        filepath.Base(file),
				Mode:        mode,
				NoHistory:   noHistory,
				WithHistory: withHistory,
			})
		}
	}
	return results
}

// runBenchmark validates one file config.Runs times and returns the successful durations.
func runBenchmark(config BenchmarkConfig, workDir, file, mode string, env []string) []float64 {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "fm301check", "validate", file, "report.txt", mode, "--results-json", "")
		cmd.Dir = workDir
		cmd.Env = append(os.Environ(), env...)

		start := time.Now()
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && strings.Contains(string(output), "Validation complete") {
			times = append(times, elapsed)
		}
	}
	return times
}

// average formats the mean of times, or FAILED when nothing succeeded.
func average(times []float64) string {
	if len(times) == 0 {
		return "FAILED"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/fm301check_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"file", "mode", "no_history_avg", "sqlite_history_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.File, result.Mode, result.NoHistory, result.WithHistory}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-32s %s: No history: %s, SQLite history: %s\n", result.File, result.Mode, result.NoHistory, result.WithHistory)
	}
}
