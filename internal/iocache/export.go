package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/parquet"
)

// ExecuteAnalysisExport writes every stored run and metric row to a pair of
// Parquet files named after outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total metric rows: %d\n", status.TableSizes[metricValuesTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	metricRows, err := store.GetAllMetricRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve metric rows: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(analysisRuns)
	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(parquetRuns), runsFile)

	parquetMetrics := parquet.ConvertMetricRowRecords(metricRows)
	metricsFile := outputFile + ".metric_values.parquet"
	if err := parquet.WriteMetricRowsParquet(parquetMetrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write metric rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d metric rows to: %s\n", len(parquetMetrics), metricsFile)

	return nil
}
