package schema

import (
	"strings"
	"time"
)

// WindowAggregates holds one fixed-length series per subset, aligned by window index.
type WindowAggregates struct {
	Span              time.Duration
	Start             time.Time
	End               time.Time
	Column            DatetimeColumn
	Windows           int
	ChangedBinary     map[Subset][]int
	LinesChangedCount map[Subset][]int
}

// TimeseriesStats are the distribution statistics of one series.
// Frac is only meaningful for 0/1 activity series.
type TimeseriesStats struct {
	Entropy   float64
	Variation float64
	Frac      float64
}

// TimeseriesMetrics holds the statistics of every series of one bucketing.
type TimeseriesMetrics struct {
	Windows           int
	ChangedBinary     map[Subset]TimeseriesStats
	LinesChangedCount map[Subset]TimeseriesStats
}

// StabilityMetrics classifies contributors by how long they stayed active.
type StabilityMetrics struct {
	StableContributors               int
	TransientContributors            int
	MedianContributionSpanDays       float64
	MeanContributionSpanDays         float64
	NormalizedMedianContributionSpan float64
	NormalizedMeanContributionSpan   float64
}

// ConcentrationMetrics holds the per-subset concentration of contributed lines.
type ConcentrationMetrics struct {
	AbsenceFactor map[Subset]int
	Gini          map[Subset]float64
}

// TagMetrics summarizes the repository tags.
type TagMetrics struct {
	TagCount    int
	TagsInRange int
}

// SLOCFile is the line count of one file reported by the SLOC collaborator.
type SLOCFile struct {
	Path     string
	Code     int
	Comments int
}

// SLOCMetrics holds code and comment lines per subset.
type SLOCMetrics struct {
	LinesOfCode     map[Subset]int
	LinesOfComments map[Subset]int
}

// PlatformMetrics are the hosting-platform popularity signals of a repository.
type PlatformMetrics struct {
	PrimaryLanguage string `json:"primary_language"`
	Stars           int    `json:"stars"`
	Forks           int    `json:"forks"`
	Watchers        int    `json:"watchers"`
	OpenIssues      int    `json:"open_issues"`
}

// RepoRef identifies a repository on a hosting platform.
type RepoRef struct {
	Owner string
	Name  string
}

// String returns owner/name.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// AnalysisResult is the outcome of analyzing one repository.
// Record is nil when Insufficient is set.
type AnalysisResult struct {
	Repo         string
	Record       *Record
	Insufficient *InsufficientHistory
}

// PeriodSpan is a window width together with the label it was configured as.
type PeriodSpan struct {
	Label    string
	Duration time.Duration
}

// KeyPrefix returns the label in result-key form, e.g. "1 week" -> "1_week".
func (p PeriodSpan) KeyPrefix() string {
	return strings.Join(strings.Fields(strings.ToLower(p.Label)), "_")
}

// Tag is a repository tag with its creation time.
type Tag struct {
	Name      string
	CreatedAt time.Time
}

// DocCheck is the outcome of one documentation presence rule.
type DocCheck struct {
	Rule    string
	Present bool
}

// FileClassification pairs a path with its category.
type FileClassification struct {
	Path     string       `json:"path"`
	Category FileCategory `json:"category"`
}
