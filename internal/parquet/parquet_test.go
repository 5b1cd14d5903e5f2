package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repostats/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []AnalysisRun {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	duration := int32(90_000)
	params := `{"window_spans":["1_week"]}`
	return []AnalysisRun{
		{AnalysisID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalReposAnalyzed: 2, ConfigParams: &params},
		{AnalysisID: 2, StartTime: start.Add(time.Hour)},
	}
}

func sampleMetricRows() []MetricRow {
	value := "0.25"
	recorded := time.Date(2024, 3, 1, 9, 1, 0, 0, time.UTC)
	return []MetricRow{
		{AnalysisID: 1, RepoPath: "/src/demo", MetricKey: "total_gini", MetricValue: &value, ValueType: "float", Position: 0, RecordedAt: recorded},
		{AnalysisID: 1, RepoPath: "/src/demo", MetricKey: "repo_owner_and_name", ValueType: "null", Position: 1, RecordedAt: recorded},
	}
}

func readAll[T any](t *testing.T, r io.ReaderAt, size int64) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](readerAt{r, size})
	defer func() { _ = reader.Close() }()
	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

// readerAt adds the Size method parquet uses to locate the footer.
type readerAt struct {
	io.ReaderAt
	size int64
}

func (r readerAt) Size() int64 { return r.size }

func TestSchemaColumns(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"analysis runs", parquet.SchemaOf(new(AnalysisRun)), []string{
			"analysis_id", "start_time", "end_time", "run_duration_ms", "total_repos_analyzed", "config_params",
		}},
		{"metric rows", parquet.SchemaOf(new(MetricRow)), []string{
			"analysis_id", "repo_path", "metric_key", "metric_value", "value_type", "position", "recorded_at",
		}},
		{"result rows", parquet.SchemaOf(new(ResultRow)), []string{
			"repo_path", "metric_key", "metric_value", "value_type", "position",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	info, err := file.Stat()
	require.NoError(t, err)

	got := readAll[AnalysisRun](t, file, info.Size())
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].AnalysisID)
	assert.Equal(t, int32(2), got[0].TotalReposAnalyzed)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int32(90_000), *got[0].RunDurationMs)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteMetricRowsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metrics.parquet")
	require.NoError(t, WriteMetricRowsParquet(sampleMetricRows(), outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	info, err := file.Stat()
	require.NoError(t, err)

	got := readAll[MetricRow](t, file, info.Size())
	require.Len(t, got, 2)
	assert.Equal(t, "total_gini", got[0].MetricKey)
	require.NotNil(t, got[0].MetricValue)
	assert.Equal(t, "0.25", *got[0].MetricValue)
	assert.Nil(t, got[1].MetricValue)
	assert.Equal(t, "null", got[1].ValueType)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "file should contain the schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteMetricRowsParquet(sampleMetricRows(), "/nonexistent/directory/output.parquet")
	assert.Error(t, err)
}

func TestWriteResultRows(t *testing.T) {
	record := schema.NewRecord()
	record.Set("repo_commit_hash", "abc123")
	record.Set("total_gini", 0.123456)
	record.Set("repo_owner_and_name", nil)

	rows := ConvertRecord("/src/demo", record, 3)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(1), rows[1].Position)
	require.NotNil(t, rows[1].MetricValue)
	assert.Equal(t, "0.123", *rows[1].MetricValue)
	assert.Equal(t, "float", rows[1].ValueType)
	assert.Nil(t, rows[2].MetricValue)

	var buf bytes.Buffer
	require.NoError(t, WriteResultRows(&buf, rows))

	got := readAll[ResultRow](t, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Len(t, got, 3)
	assert.Equal(t, "repo_commit_hash", got[0].MetricKey)
	assert.Equal(t, "/src/demo", got[2].RepoPath)
}

func TestConvertRecords(t *testing.T) {
	runs := ConvertAnalysisRunRecords([]schema.AnalysisRunRecord{{AnalysisID: 7, TotalReposAnalyzed: 3}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].AnalysisID)
	assert.Equal(t, int32(3), runs[0].TotalReposAnalyzed)

	value := "12"
	rows := ConvertMetricRowRecords([]schema.MetricRowRecord{{AnalysisID: 7, MetricKey: "total_absence_factor", MetricValue: &value, ValueType: "int", Position: 4}})
	require.Len(t, rows, 1)
	assert.Equal(t, "total_absence_factor", rows[0].MetricKey)
	assert.Equal(t, int32(4), rows[0].Position)
	assert.Equal(t, &value, rows[0].MetricValue)
}
