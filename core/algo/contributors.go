package algo

import (
	"cmp"
	"slices"
	"time"

	"github.com/huangsam/repostats/core/history"
	"github.com/huangsam/repostats/schema"
)

const day = 24 * time.Hour

// ContributorStability groups the commits in [start, end] by contributor and
// measures each contributor's active span in whole days, from first to last
// commit. A contributor is stable when that span reaches the period length in
// whole days, and transient otherwise. Zero bounds are derived from the data.
func ContributorStability(
	summaries []schema.CommitSummary,
	period time.Duration,
	start, end time.Time,
	contributorCol schema.ContributorColumn,
	datetimeCol schema.DatetimeColumn,
) (schema.StabilityMetrics, error) {
	if period <= 0 {
		return schema.StabilityMetrics{}, &schema.InvalidWindowError{Span: period, Start: start, End: end}
	}
	if start.IsZero() || end.IsZero() {
		lo, hi := history.Bounds(summaries, datetimeCol)
		if start.IsZero() {
			start = lo
		}
		if end.IsZero() {
			end = hi
		}
	}
	if start.After(end) {
		return schema.StabilityMetrics{}, &schema.InvalidWindowError{Span: period, Start: start, End: end}
	}

	type activity struct{ first, last time.Time }
	spans := make(map[string]*activity)
	for _, s := range summaries {
		ts := datetimeCol.Timestamp(s.CommitMeta)
		if !history.InRange(ts, start, end) {
			continue
		}
		id := contributorCol.Identity(s.CommitMeta)
		a, ok := spans[id]
		if !ok {
			spans[id] = &activity{first: ts, last: ts}
			continue
		}
		if ts.Before(a.first) {
			a.first = ts
		}
		if ts.After(a.last) {
			a.last = ts
		}
	}

	threshold := int(period / day)
	var m schema.StabilityMetrics
	days := make([]int, 0, len(spans))
	for _, a := range spans {
		d := int(a.last.Sub(a.first) / day)
		days = append(days, d)
		if d >= threshold {
			m.StableContributors++
		} else {
			m.TransientContributors++
		}
	}

	m.MedianContributionSpanDays = Median(days)
	m.MeanContributionSpanDays = Mean(days)
	if projectDays := int(end.Sub(start) / day); projectDays > 0 {
		m.NormalizedMedianContributionSpan = m.MedianContributionSpanDays / float64(projectDays)
		m.NormalizedMeanContributionSpan = m.MeanContributionSpanDays / float64(projectDays)
	}
	return m, nil
}

// contribution is the lines a contributor changed within one subset.
type contribution struct {
	identity string
	lines    int
}

// contributionsBySubset sums lines_changed per contributor for every subset.
// Each subset lists every contributor, including those with zero lines.
func contributionsBySubset(summaries []schema.CommitSummary, column schema.ContributorColumn) map[schema.Subset][]contribution {
	totals := make(map[string]map[schema.Subset]int)
	for _, s := range summaries {
		id := column.Identity(s.CommitMeta)
		if totals[id] == nil {
			totals[id] = make(map[schema.Subset]int, len(schema.AllSubsets))
		}
		for _, subset := range schema.AllSubsets {
			totals[id][subset] += s.Counts(subset).LinesChanged
		}
	}

	out := make(map[schema.Subset][]contribution, len(schema.AllSubsets))
	for _, subset := range schema.AllSubsets {
		list := make([]contribution, 0, len(totals))
		for id, bySubset := range totals {
			list = append(list, contribution{identity: id, lines: bySubset[subset]})
		}
		slices.SortFunc(list, func(a, b contribution) int {
			if c := cmp.Compare(b.lines, a.lines); c != 0 {
				return c
			}
			return cmp.Compare(a.identity, b.identity)
		})
		out[subset] = list
	}
	return out
}

// absenceFactor counts the top contributors needed to reach half of all lines.
// The list must be sorted by lines descending.
func absenceFactor(list []contribution) int {
	total := 0
	for _, c := range list {
		total += c.lines
	}
	if total == 0 {
		return 0
	}
	cumulative := 0
	for i, c := range list {
		cumulative += c.lines
		if 2*cumulative >= total {
			return i + 1
		}
	}
	return len(list)
}

// AbsenceFactor returns, per subset, the smallest number of contributors who
// together changed at least half of the lines. Contributors are ranked by lines
// descending, then identity ascending. A subset without changed lines scores 0.
func AbsenceFactor(summaries []schema.CommitSummary, column schema.ContributorColumn) map[schema.Subset]int {
	out := make(map[schema.Subset]int, len(schema.AllSubsets))
	for subset, list := range contributionsBySubset(summaries, column) {
		out[subset] = absenceFactor(list)
	}
	return out
}

// Concentration computes the absence factor and the Gini coefficient of
// per-contributor lines changed for every subset.
func Concentration(summaries []schema.CommitSummary, column schema.ContributorColumn) schema.ConcentrationMetrics {
	m := schema.ConcentrationMetrics{
		AbsenceFactor: make(map[schema.Subset]int, len(schema.AllSubsets)),
		Gini:          make(map[schema.Subset]float64, len(schema.AllSubsets)),
	}
	for subset, list := range contributionsBySubset(summaries, column) {
		m.AbsenceFactor[subset] = absenceFactor(list)
		values := make([]float64, len(list))
		for i, c := range list {
			values[i] = float64(c.lines)
		}
		m.Gini[subset] = Gini(values)
	}
	return m
}
