package algo

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func commitBy(name string, ts time.Time, cat schema.FileCategory, lines int) schema.CommitSummary {
	s := schema.CommitSummary{CommitMeta: schema.CommitMeta{
		Hash:        name + ts.String(),
		AuthoredAt:  ts,
		CommittedAt: ts,
		Author:      schema.Identity{Name: name},
		Committer:   schema.Identity{Name: "ci"},
	}}
	s.AddChange(cat, lines, 0, lines)
	return s
}

func TestContributorStabilityBoundary(t *testing.T) {
	summaries := []schema.CommitSummary{
		commitBy("alice", day(1), schema.Programming, 1),
		commitBy("alice", day(8), schema.Programming, 1),
		commitBy("bob", day(1), schema.Programming, 1),
		commitBy("bob", day(8).Add(-time.Minute), schema.Programming, 1),
	}
	m, err := ContributorStability(summaries, week, day(1), day(11), schema.AuthorName, schema.AuthoredDatetime)
	require.NoError(t, err)

	assert.Equal(t, 1, m.StableContributors, "span equal to the period is stable")
	assert.Equal(t, 1, m.TransientContributors, "one day short is transient")
	assert.Equal(t, 6.5, m.MedianContributionSpanDays)
	assert.Equal(t, 6.5, m.MeanContributionSpanDays)
	assert.InDelta(t, 0.65, m.NormalizedMedianContributionSpan, 1e-9)
	assert.InDelta(t, 0.65, m.NormalizedMeanContributionSpan, 1e-9)
}

func TestContributorStabilityColumns(t *testing.T) {
	summaries := []schema.CommitSummary{
		commitBy("alice", day(1), schema.Prose, 1),
		commitBy("bob", day(20), schema.Prose, 1),
	}

	m, err := ContributorStability(summaries, week, time.Time{}, time.Time{}, schema.CommitterName, schema.AuthoredDatetime)
	require.NoError(t, err)
	assert.Equal(t, 1, m.StableContributors, "both commits share the committer")
	assert.Equal(t, 0, m.TransientContributors)
	assert.InDelta(t, 1.0, m.NormalizedMeanContributionSpan, 1e-9)

	m, err = ContributorStability(summaries, week, time.Time{}, time.Time{}, schema.AuthorName, schema.AuthoredDatetime)
	require.NoError(t, err)
	assert.Equal(t, 0, m.StableContributors)
	assert.Equal(t, 2, m.TransientContributors)
}

func TestContributorStabilityDegenerate(t *testing.T) {
	t.Run("no commits in range", func(t *testing.T) {
		m, err := ContributorStability([]schema.CommitSummary{commitBy("a", day(20), schema.Data, 1)}, week, day(1), day(10), schema.AuthorName, schema.AuthoredDatetime)
		require.NoError(t, err)
		assert.Equal(t, schema.StabilityMetrics{}, m)
	})

	t.Run("zero project duration", func(t *testing.T) {
		m, err := ContributorStability([]schema.CommitSummary{commitBy("a", day(3), schema.Data, 1)}, week, time.Time{}, time.Time{}, schema.AuthorName, schema.AuthoredDatetime)
		require.NoError(t, err)
		assert.Equal(t, 1, m.TransientContributors)
		assert.Equal(t, 0.0, m.NormalizedMedianContributionSpan)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := ContributorStability(nil, 0, day(1), day(2), schema.AuthorName, schema.AuthoredDatetime)
		var windowErr *schema.InvalidWindowError
		assert.True(t, errors.As(err, &windowErr))
	})
}

func TestAbsenceFactor(t *testing.T) {
	uniform := func(k int) []schema.CommitSummary {
		out := make([]schema.CommitSummary, 0, k)
		for i := range k {
			out = append(out, commitBy(string(rune('a'+i)), day(1), schema.Programming, 10))
		}
		return out
	}

	tests := []struct {
		name      string
		summaries []schema.CommitSummary
		expected  int
	}{
		{"uniform four", uniform(4), 2},
		{"uniform five", uniform(5), 3},
		{"uniform one", uniform(1), 1},
		{"one dominant", append(uniform(4), commitBy("whale", day(2), schema.Programming, 1000)), 1},
		{"no commits", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			af := AbsenceFactor(tt.summaries, schema.AuthorName)
			assert.Equal(t, tt.expected, af[schema.TotalSubset])
			assert.Equal(t, tt.expected, af[schema.ProgrammingSubset])
			assert.Equal(t, 0, af[schema.ProseSubset], "subset without lines")
		})
	}
}

func TestConcentration(t *testing.T) {
	summaries := []schema.CommitSummary{
		commitBy("alice", day(1), schema.Programming, 30),
		commitBy("alice", day(2), schema.Prose, 10),
		commitBy("bob", day(3), schema.Programming, 10),
	}
	m := Concentration(summaries, schema.AuthorName)

	assert.Equal(t, 1, m.AbsenceFactor[schema.TotalSubset])
	assert.Equal(t, 1, m.AbsenceFactor[schema.ProseSubset])
	assert.Equal(t, 0, m.AbsenceFactor[schema.MarkupSubset])
	assert.InDelta(t, 0.25, m.Gini[schema.ProgrammingSubset], 1e-9)
	assert.InDelta(t, 0.5, m.Gini[schema.ProseSubset], 1e-9)
	assert.Equal(t, 0.0, m.Gini[schema.DataSubset])
	assert.Len(t, m.Gini, len(schema.AllSubsets))
}

func TestContributionOrdering(t *testing.T) {
	summaries := []schema.CommitSummary{
		commitBy("zed", day(1), schema.Data, 5),
		commitBy("amy", day(1), schema.Data, 5),
		commitBy("max", day(1), schema.Data, 9),
	}
	list := contributionsBySubset(summaries, schema.AuthorName)[schema.DataSubset]
	require.Len(t, list, 3)
	assert.Equal(t, []string{"max", "amy", "zed"}, []string{list[0].identity, list[1].identity, list[2].identity})
}

func TestTimeseries(t *testing.T) {
	w := schema.WindowAggregates{
		Windows:           2,
		ChangedBinary:     map[schema.Subset][]int{schema.TotalSubset: {1, 1}},
		LinesChangedCount: map[schema.Subset][]int{schema.TotalSubset: {3, 1}},
	}
	m := Timeseries(w)
	assert.Equal(t, 2, m.Windows)
	assert.InDelta(t, 1.0, m.ChangedBinary[schema.TotalSubset].Entropy, 1e-9)
	assert.Equal(t, 1.0, m.ChangedBinary[schema.TotalSubset].Frac)
	assert.Equal(t, 0.0, m.ChangedBinary[schema.TotalSubset].Variation)
	assert.InDelta(t, 0.5, m.LinesChangedCount[schema.TotalSubset].Variation, 1e-9)
	assert.Equal(t, schema.TimeseriesStats{}, m.ChangedBinary[schema.UnknownSubset])
}
