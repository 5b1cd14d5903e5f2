package schema

import "time"

// AnalysisRunRecord represents a row from the repostats_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID         int64
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	TotalReposAnalyzed int32
	ConfigParams       *string
}

// MetricRowRecord represents a row from the repostats_metric_values table.
// Every record key becomes one row; MetricValue is nil for null values.
type MetricRowRecord struct {
	AnalysisID  int64
	RepoPath    string
	MetricKey   string
	MetricValue *string
	ValueType   string
	Position    int32
	RecordedAt  time.Time
}
