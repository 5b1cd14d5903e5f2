package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repostats/core/agg"
	"github.com/huangsam/repostats/core/algo"
	"github.com/huangsam/repostats/core/history"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/sloc"
	"github.com/huangsam/repostats/schema"
)

// recordBuilder assembles the flat result record group by group.
type recordBuilder struct {
	record *schema.Record
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{record: schema.NewRecord()}
}

// metadata describes the analyzed repository and the analysis settings.
type metadata struct {
	repo         string
	ref          schema.RepoRef
	resolved     bool
	head         string
	start, end   time.Time
	processedAt  time.Time
	filter       history.BotFilter
	removed      int
	commits      int
	contributors int
}

func (b *recordBuilder) metadata(cfg *contract.Config, m metadata) {
	r := b.record
	r.Set("repo_path", m.repo)
	if m.resolved {
		r.Set("repo_owner_and_name", strings.ToLower(m.ref.String()))
	} else {
		r.Set("repo_owner_and_name", nil)
	}
	r.Set("head_commit_hash", m.head)
	r.Set("start_datetime", formatTime(m.start))
	r.Set("end_datetime", formatTime(m.end))
	r.Set("contributor_name_column", string(cfg.ContributorColumn))
	r.Set("datetime_column", string(cfg.DatetimeColumn))
	r.Set("processed_at", formatTime(m.processedAt))
	r.Set("bot_names", strings.Join(m.filter.Names, ","))
	r.Set("bot_name_indicators", strings.Join(m.filter.NameIndicators, ","))
	r.Set("bot_email_indicators", strings.Join(m.filter.EmailIndicators, ","))
	r.Set("bot_commits_removed_count", m.removed)
	r.Set("commit_count", m.commits)
	r.Set("contributor_count", m.contributors)
}

// periodMetrics adds the windowed statistics of every configured span.
func (b *recordBuilder) periodMetrics(cfg *contract.Config, summaries []schema.CommitSummary, start, end time.Time) error {
	for _, span := range cfg.PeriodSpans {
		prefix := span.KeyPrefix()
		if cfg.ComputeTimeseries {
			windows, err := agg.Bucket(summaries, span.Duration, start, end, cfg.DatetimeColumn)
			if err != nil {
				return fmt.Errorf("bucket %s: %w", span.Label, err)
			}
			b.timeseries(prefix, algo.Timeseries(windows))
		}
		if cfg.ComputeStability {
			stability, err := algo.ContributorStability(summaries, span.Duration, start, end, cfg.ContributorColumn, cfg.DatetimeColumn)
			if err != nil {
				return fmt.Errorf("contributor stability %s: %w", span.Label, err)
			}
			b.stability(prefix, stability)
		}
	}
	return nil
}

func (b *recordBuilder) timeseries(prefix string, m schema.TimeseriesMetrics) {
	r := b.record
	r.Set(prefix+"_window_count", m.Windows)
	for _, subset := range schema.AllSubsets {
		key := fmt.Sprintf("%s_%s_", prefix, subset)
		binary := m.ChangedBinary[subset]
		r.Set(key+"changed_binary_entropy", binary.Entropy)
		r.Set(key+"changed_binary_variation", binary.Variation)
		r.Set(key+"changed_binary_frac", binary.Frac)
		lines := m.LinesChangedCount[subset]
		r.Set(key+"lines_changed_count_entropy", lines.Entropy)
		r.Set(key+"lines_changed_count_variation", lines.Variation)
	}
}

func (b *recordBuilder) stability(prefix string, m schema.StabilityMetrics) {
	r := b.record
	r.Set(prefix+"_stable_contributors_count", m.StableContributors)
	r.Set(prefix+"_transient_contributors_count", m.TransientContributors)
	r.Set(prefix+"_median_contribution_span_days", m.MedianContributionSpanDays)
	r.Set(prefix+"_mean_contribution_span_days", m.MeanContributionSpanDays)
	r.Set(prefix+"_normalized_median_contribution_span", m.NormalizedMedianContributionSpan)
	r.Set(prefix+"_normalized_mean_contribution_span", m.NormalizedMeanContributionSpan)
}

// concentration adds the absence factor and Gini coefficient of every subset.
func (b *recordBuilder) concentration(summaries []schema.CommitSummary, column schema.ContributorColumn) {
	m := algo.Concentration(summaries, column)
	for _, subset := range schema.AllSubsets {
		b.record.Set(string(subset)+"_contributor_absence_factor", m.AbsenceFactor[subset])
	}
	for _, subset := range schema.AllSubsets {
		b.record.Set(string(subset)+"_contributor_gini", m.Gini[subset])
	}
}

// tags counts all tags and those created within the scoped range.
func (b *recordBuilder) tags(tags []schema.Tag, start, end time.Time) {
	inRange := 0
	for _, t := range tags {
		if !t.CreatedAt.IsZero() && history.InRange(t.CreatedAt, start, end) {
			inRange++
		}
	}
	b.record.Set("tag_count", len(tags))
	b.record.Set("tags_in_range_count", inRange)
}

func (b *recordBuilder) sloc(files []schema.SLOCFile, classify func(string) schema.FileCategory) {
	m := sloc.Summarize(files, classify)
	for _, subset := range schema.AllSubsets {
		b.record.Set(string(subset)+"_lines_of_code", m.LinesOfCode[subset])
		b.record.Set(string(subset)+"_lines_of_comments", m.LinesOfComments[subset])
	}
}

func (b *recordBuilder) docs(checks []schema.DocCheck) {
	for _, c := range checks {
		b.record.Set("doc_"+c.Rule, c.Present)
	}
}

func (b *recordBuilder) platform(m schema.PlatformMetrics) {
	r := b.record
	if m.PrimaryLanguage == "" {
		r.Set("primary_programming_language", nil)
	} else {
		r.Set("primary_programming_language", m.PrimaryLanguage)
	}
	r.Set("stargazers_count", m.Stars)
	r.Set("forks_count", m.Forks)
	r.Set("watchers_count", m.Watchers)
	r.Set("open_issues_count", m.OpenIssues)
}

// formatTime renders a bound in RFC3339, or nil when it is unset.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
