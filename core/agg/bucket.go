// Package agg folds per-commit summaries into fixed-width time windows.
package agg

import (
	"time"

	"github.com/huangsam/repostats/core/history"
	"github.com/huangsam/repostats/schema"
)

// Bucket partitions [start, end] into contiguous half-open windows of the given
// span and computes, per window and subset, whether any commit changed lines
// (changed_binary) and how many lines changed in total (lines_changed_count).
//
// Zero start or end are derived from the earliest or latest commit. The window
// count is ceil((end-start)/span), so a range with no width has no windows.
// Windows are half-open: a commit at end falls outside them when end-start is
// a whole number of spans.
func Bucket(summaries []schema.CommitSummary, span time.Duration, start, end time.Time, column schema.DatetimeColumn) (schema.WindowAggregates, error) {
	if span <= 0 {
		return schema.WindowAggregates{}, &schema.InvalidWindowError{Span: span, Start: start, End: end}
	}

	derived := start.IsZero() || end.IsZero()
	if derived {
		lo, hi := history.Bounds(summaries, column)
		if start.IsZero() {
			start = lo
		}
		if end.IsZero() {
			end = hi
		}
	}
	if start.After(end) {
		return schema.WindowAggregates{}, &schema.InvalidWindowError{Span: span, Start: start, End: end}
	}

	n := windowCount(end.Sub(start), span)

	out := schema.WindowAggregates{
		Span:              span,
		Start:             start,
		End:               end,
		Column:            column,
		Windows:           n,
		ChangedBinary:     make(map[schema.Subset][]int, len(schema.AllSubsets)),
		LinesChangedCount: make(map[schema.Subset][]int, len(schema.AllSubsets)),
	}
	for _, subset := range schema.AllSubsets {
		out.ChangedBinary[subset] = make([]int, n)
		out.LinesChangedCount[subset] = make([]int, n)
	}
	if n == 0 {
		return out, nil
	}

	for i := range summaries {
		s := &summaries[i]
		ts := column.Timestamp(s.CommitMeta)
		if !history.InRange(ts, start, end) {
			continue
		}
		offset := ts.Sub(start)
		if offset >= time.Duration(n)*span {
			continue
		}
		idx := int(offset / span)
		for _, subset := range schema.AllSubsets {
			lines := s.Counts(subset).LinesChanged
			out.LinesChangedCount[subset][idx] += lines
			if lines != 0 {
				out.ChangedBinary[subset][idx] = 1
			}
		}
	}
	return out, nil
}

// windowCount returns ceil(width/span) for a non-negative width.
func windowCount(width, span time.Duration) int {
	n := int(width / span)
	if width%span != 0 {
		n++
	}
	return n
}

// WindowStart returns the inclusive start of window i.
func WindowStart(w schema.WindowAggregates, i int) time.Time {
	return w.Start.Add(time.Duration(i) * w.Span)
}
