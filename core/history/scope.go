package history

import (
	"time"

	"github.com/huangsam/repostats/schema"
)

// ScopeToRange keeps commits whose chosen timestamp lies within [start, end].
// A zero bound leaves that side open.
func ScopeToRange(h schema.History, start, end time.Time, column schema.DatetimeColumn) schema.History {
	if start.IsZero() && end.IsZero() {
		return h
	}
	out, _ := keepCommits(h, func(meta schema.CommitMeta) bool {
		return InRange(column.Timestamp(meta), start, end)
	})
	return out
}

// InRange reports whether ts lies within the inclusive range, treating zero bounds as open.
func InRange(ts, start, end time.Time) bool {
	if !start.IsZero() && ts.Before(start) {
		return false
	}
	if !end.IsZero() && ts.After(end) {
		return false
	}
	return true
}

// Bounds returns the earliest and latest value of the chosen timestamp column.
// Both are zero when there are no summaries.
func Bounds(summaries []schema.CommitSummary, column schema.DatetimeColumn) (time.Time, time.Time) {
	var lo, hi time.Time
	for i, s := range summaries {
		ts := column.Timestamp(s.CommitMeta)
		if i == 0 || ts.Before(lo) {
			lo = ts
		}
		if i == 0 || ts.After(hi) {
			hi = ts
		}
	}
	return lo, hi
}
