// Package parquet exports stored analysis runs and result records to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repostats/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun is one row of the repostats_analysis_runs table.
type AnalysisRun struct {
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// StartTime is when the run began, stored with nanosecond precision
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil when the run never finished
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	TotalReposAnalyzed int32 `parquet:"total_repos_analyzed,snappy"`

	// ConfigParams is the JSON-encoded run configuration
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MetricRow is one key of one stored result record. Records are kept in long
// form because their key set depends on which metric groups were enabled.
type MetricRow struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RepoPath   string `parquet:"repo_path,snappy,dict"`
	MetricKey  string `parquet:"metric_key,snappy,dict"`

	// MetricValue is the rendered value; nil for null metrics
	MetricValue *string `parquet:"metric_value,optional,snappy"`

	// ValueType is one of null, bool, int, float or string
	ValueType  string    `parquet:"value_type,snappy,dict"`
	Position   int32     `parquet:"position,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// ResultRow is one key of a freshly computed result record, used when the
// analyze command writes Parquet directly instead of through the store.
type ResultRow struct {
	RepoPath    string  `parquet:"repo_path,snappy,dict"`
	MetricKey   string  `parquet:"metric_key,snappy,dict"`
	MetricValue *string `parquet:"metric_value,optional,snappy"`
	ValueType   string  `parquet:"value_type,snappy,dict"`
	Position    int32   `parquet:"position,snappy"`
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteMetricRowsParquet writes stored metric rows to a Parquet file.
func WriteMetricRowsParquet(data []MetricRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteResultRows writes result rows as a Parquet stream to w.
func WriteResultRows(w io.Writer, data []ResultRow) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write infers the schema from T's struct tags.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:         record.AnalysisID,
			StartTime:          record.StartTime,
			EndTime:            record.EndTime,
			RunDurationMs:      record.RunDurationMs,
			TotalReposAnalyzed: record.TotalReposAnalyzed,
			ConfigParams:       record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricRowRecords converts schema.MetricRowRecord to MetricRow for Parquet export.
func ConvertMetricRowRecords(records []schema.MetricRowRecord) []MetricRow {
	result := make([]MetricRow, len(records))
	for i, record := range records {
		result[i] = MetricRow{
			AnalysisID:  record.AnalysisID,
			RepoPath:    record.RepoPath,
			MetricKey:   record.MetricKey,
			MetricValue: record.MetricValue,
			ValueType:   record.ValueType,
			Position:    record.Position,
			RecordedAt:  record.RecordedAt,
		}
	}
	return result
}

// ConvertRecord flattens a result record into rows, rendering floats with the
// given precision.
func ConvertRecord(repoPath string, record *schema.Record, precision int) []ResultRow {
	rows := make([]ResultRow, 0, record.Len())
	record.Each(func(key string, value any) {
		row := ResultRow{
			RepoPath:  repoPath,
			MetricKey: key,
			ValueType: schema.ValueType(value),
			Position:  int32(len(rows)),
		}
		if value != nil {
			s := schema.FormatValue(value, precision)
			row.MetricValue = &s
		}
		rows = append(rows, row)
	})
	return rows
}
