package models

import (
	"fmt"
	"time"
)

// Granularity is the calendar bucket size a time series is aggregated
// into. Values are ordered from finest to coarsest.
type Granularity int

const (
	GranularityHour Granularity = iota
	GranularityDay
	GranularityWeek
	GranularityMonth
	GranularityYear
)

var granularityNames = map[Granularity]string{
	GranularityHour:  "hour",
	GranularityDay:   "day",
	GranularityWeek:  "week",
	GranularityMonth: "month",
	GranularityYear:  "year",
}

func ParseGranularity(s string) (Granularity, error) {
	for g, name := range granularityNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return "unknown"
}

func (g Granularity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

func (g *Granularity) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid granularity %s", data)
	}
	parsed, err := ParseGranularity(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// PreferredQuantity is the default lookback count for a granularity,
// used when an operation takes a reference date instead of an interval.
func (g Granularity) PreferredQuantity() int {
	switch g {
	case GranularityHour:
		return 24
	case GranularityDay:
		return 30
	case GranularityWeek:
		return 13
	case GranularityMonth:
		return 12
	case GranularityYear:
		return 5
	default:
		return 30
	}
}

// BucketStart truncates t to the start of its bucket in loc.
// Weeks start on Monday.
func (g Granularity) BucketStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case GranularityYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return t
	}
}

// AddTo advances t by n buckets of this granularity.
func (g Granularity) AddTo(t time.Time, n int) time.Time {
	switch g {
	case GranularityHour:
		return t.Add(time.Duration(n) * time.Hour)
	case GranularityDay:
		return t.AddDate(0, 0, n)
	case GranularityWeek:
		return t.AddDate(0, 0, 7*n)
	case GranularityMonth:
		return t.AddDate(0, n, 0)
	case GranularityYear:
		return t.AddDate(n, 0, 0)
	default:
		return t
	}
}

// SameBucket reports whether a and b fall into the same bucket in loc.
func (g Granularity) SameBucket(a, b time.Time, loc *time.Location) bool {
	return g.BucketStart(a, loc).Equal(g.BucketStart(b, loc))
}
