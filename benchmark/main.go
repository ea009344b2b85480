// Package main provides a performance benchmarking tool for the tsfeat CLI.
// It generates synthetic long-format panels of increasing size, runs the grouped
// extraction on each of them several times, treats the first successful cached run
// as cold and averages the rest as warm, and writes CSV output for documentation.
//
// Prerequisites:
// - tsfeat binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic panels and the benchmark cache are written
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Panel       string
	Format      string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// PanelSpec describes one synthetic panel.
type PanelSpec struct {
	Name   string
	IDs    int
	Points int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Panels      []PanelSpec
	Formats     []string
}

// panelRow is one row of a synthetic panel.
type panelRow struct {
	ID   string  `parquet:"id"`
	Time int64   `parquet:"time"`
	X    float64 `parquet:"x"`
	Y    float64 `parquet:"y"`
	Z    float64 `parquet:"z"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Panels: []PanelSpec{
			{Name: "small", IDs: 100, Points: 100},
			{Name: "medium", IDs: 1000, Points: 500},
			{Name: "large", IDs: 10000, Points: 1000},
		},
		Formats: []string{"csv", "parquet"},
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

// checkPrerequisites verifies that the tsfeat binary exists and the work dir is usable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("tsfeat"); err != nil {
		return fmt.Errorf("tsfeat binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates every panel and benchmarks it in every input format.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d panels, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Panels), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Panels {
		rows := generatePanel(spec)
		for _, format := range config.Formats {
			path := filepath.Join(config.WorkDir, fmt.Sprintf("panel_%s.%s", spec.Name, format))
			if err := writePanel(path, format, rows); err != nil {
				fmt.Printf("Skipping %s (%s): %v\n", spec.Name, format, err)
				continue
			}
			results = append(results, runBenchmarkSuite(config, spec, format, path))
		}
	}

	return results
}

// generatePanel builds a panel of random walks, shuffled so sorting does real work.
func generatePanel(spec PanelSpec) []panelRow {
	rng := rand.New(rand.NewPCG(42, uint64(spec.IDs)))
	rows := make([]panelRow, 0, spec.IDs*spec.Points)
	for id := range spec.IDs {
		var x, y float64
		for t := range spec.Points {
			x += rng.NormFloat64()
			y = 0.8*y + rng.NormFloat64()
			rows = append(rows, panelRow{
				ID:   "series-" + strconv.Itoa(id),
				Time: int64(t),
				X:    x,
				Y:    y,
				Z:    math.Sin(float64(t)/10) + 0.1*rng.NormFloat64(),
			})
		}
	}
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

// writePanel writes the panel as CSV or Parquet.
func writePanel(path, format string, rows []panelRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if format == "parquet" {
		writer := parquet.NewGenericWriter[panelRow](file)
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		return writer.Close()
	}

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "time", "x", "y", "z"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			strconv.FormatInt(r.Time, 10),
			strconv.FormatFloat(r.X, 'g', -1, 64),
			strconv.FormatFloat(r.Y, 'g', -1, 64),
			strconv.FormatFloat(r.Z, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one panel file.
func runBenchmarkSuite(config BenchmarkConfig, spec PanelSpec, format, path string) BenchmarkResult {
	fmt.Printf("Running extraction on %s (%s, %d ids x %d points)\n", spec.Name, format, spec.IDs, spec.Points)

	cacheDB := filepath.Join(config.WorkDir, "benchmark_cache.db")
	_ = os.Remove(cacheDB)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Panel:       spec.Name,
		Format:      format,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes the extraction multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, path, cacheBackend, cacheDB string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"extract", path,
		"--limit", "5",
		"--workers", strconv.Itoa(config.Workers),
		"--cache-backend", cacheBackend,
		"--cache-db-connect", cacheDB,
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("tsfeat", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Extraction completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("tsfeat_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"panel", "format", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Panel, result.Format, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, format := range []string{"csv", "parquet"} {
		fmt.Printf("%s input:\n", strings.ToUpper(format))
		for _, result := range results {
			if result.Format == format {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Panel, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
