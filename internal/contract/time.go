package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repostats/schema"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * 24 * time.Hour), nil
	case "day":
		return now.Add(time.Duration(-value) * 24 * time.Hour), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// Define the regular expression to capture "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseLookbackDuration converts strings like "3 months" or "720h" into a single time.Duration.
// It first tries Go's built-in time.ParseDuration for standard formats, then falls back
// to custom parsing for human-readable formats.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	var unit time.Duration
	switch matches[2] {
	case "year":
		unit = 365 * 24 * time.Hour // approximation
	case "month":
		unit = 30 * 24 * time.Hour // approximation
	case "week":
		unit = 7 * 24 * time.Hour
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	default:
		unit = time.Minute
	}

	if value <= 0 {
		return 0, errors.New("duration must be positive")
	}
	if time.Duration(value) > math.MaxInt64/unit {
		return 0, fmt.Errorf("duration too large: %s", s)
	}
	return time.Duration(value) * unit, nil
}

// ParsePeriodSpans parses a comma-separated list like "1 week,4 weeks".
// Labels are kept as written so they can prefix result keys. Duplicate labels are rejected.
func ParsePeriodSpans(s string) ([]schema.PeriodSpan, error) {
	var spans []schema.PeriodSpan
	seen := make(map[string]bool)
	for part := range strings.SplitSeq(s, ",") {
		label := strings.Join(strings.Fields(part), " ")
		if label == "" {
			continue
		}
		d, err := ParseLookbackDuration(label)
		if err != nil {
			return nil, fmt.Errorf("invalid period span %q: %w", label, err)
		}
		span := schema.PeriodSpan{Label: label, Duration: d}
		if seen[span.KeyPrefix()] {
			return nil, fmt.Errorf("duplicate period span %q", label)
		}
		seen[span.KeyPrefix()] = true
		spans = append(spans, span)
	}
	if len(spans) == 0 {
		return nil, errors.New("at least one period span is required")
	}
	return spans, nil
}

// ParseTimeBound parses an RFC3339 timestamp or an "N units ago" expression.
// An empty string yields the zero time.
func ParseTimeBound(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateTimeFormat, s)
	if err == nil {
		return t, nil
	}
	t, relErr := ParseRelativeTime(s, now)
	if relErr != nil {
		return time.Time{}, fmt.Errorf("invalid time %q. Expected absolute ISO8601 or 'N [units] ago': %v", s, err)
	}
	return t, nil
}
