package algo

import "github.com/huangsam/repostats/schema"

// SeriesStats computes entropy, variation and active fraction of one series.
func SeriesStats(values []int) schema.TimeseriesStats {
	return schema.TimeseriesStats{
		Entropy:   Entropy(values),
		Variation: Variation(values),
		Frac:      ActiveFraction(values),
	}
}

// Timeseries computes the statistics of every series of a bucketing.
func Timeseries(w schema.WindowAggregates) schema.TimeseriesMetrics {
	m := schema.TimeseriesMetrics{
		Windows:           w.Windows,
		ChangedBinary:     make(map[schema.Subset]schema.TimeseriesStats, len(schema.AllSubsets)),
		LinesChangedCount: make(map[schema.Subset]schema.TimeseriesStats, len(schema.AllSubsets)),
	}
	for _, subset := range schema.AllSubsets {
		m.ChangedBinary[subset] = SeriesStats(w.ChangedBinary[subset])
		m.LinesChangedCount[subset] = SeriesStats(w.LinesChangedCount[subset])
	}
	return m
}
