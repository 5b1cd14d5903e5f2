// Package main provides a performance benchmarking tool for the repostats CLI.
// It measures analyze times across repository sizes and metric groups,
// running each suite several times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - repostats binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark suite (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Suite       string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkSuite is one analyze invocation shape.
type BenchmarkSuite struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	Suites      []BenchmarkSuite
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     10 * time.Minute,
		NoCacheRuns: 2,
		CacheRuns:   3,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		Suites: []BenchmarkSuite{
			{Name: "core", Args: []string{"--start", "2 years ago"}},
			{Name: "enriched", Args: []string{"--start", "2 years ago", "--compute-tags", "--compute-sloc", "--compute-docs"}},
			{Name: "all-spans", Args: []string{"--period-spans", "1 day,1 week,4 weeks,12 weeks"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the platform cache using repostats cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("repostats", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the repostats binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("repostats"); err != nil {
		return errors.New("repostats binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every suite across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %d suites, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), len(config.Suites), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, suite := range config.Suites {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, suite))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache phases for one suite
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, suite BenchmarkSuite) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", suite.Name, repo)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int) (coldTime float64, avgTime string) {
		cold, times := runBenchmark(config, repoPath, suite.Args, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Suite:       suite.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes repostats analyze several times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, repoPath string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{"analyze", "--cache-backend", cacheBackend}, extraArgs...)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()

		cmd := exec.CommandContext(ctx, "repostats", args...)
		cmd.Dir = repoPath
		output, err := cmd.CombinedOutput()
		if err == nil && isSuccess(output) {
			times = append(times, time.Since(start).Seconds())
		}
		cancel()
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("repostats_benchmark_%s.csv", timestamp))

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
	if err := writer.Write([]string{"repo", "suite", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Suite, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by suite
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, suite := range config.Suites {
		fmt.Printf("%s:\n", suite.Name)
		for _, result := range results {
			if result.Suite == suite.Name {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
