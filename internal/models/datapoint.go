package models

import "time"

// DataPoint is one bucket of a time series at a given granularity.
// Dates are bucket-start instants in the site's reporting timezone.
// For monetary metrics (revenue, CPM) the value is stored in cents.
type DataPoint struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

// DateInterval is a query range. End is exclusive in site-local time.
type DateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i DateInterval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i DateInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Preceding returns the interval of equal length immediately before i,
// used as the default comparison period.
func (i DateInterval) Preceding() DateInterval {
	return DateInterval{Start: i.Start.Add(-i.Duration()), End: i.Start}
}

// AggregationStrategy decides how a series is reduced into a total.
type AggregationStrategy int

const (
	AggregationSum AggregationStrategy = iota
	AggregationAverage
)

// TotalValue reduces a series into a single total. Returns false for an
// empty series so callers can distinguish "no data" from zero.
func TotalValue(points []DataPoint, strategy AggregationStrategy) (int, bool) {
	if len(points) == 0 {
		return 0, false
	}
	total := 0
	for _, p := range points {
		total += p.Value
	}
	if strategy == AggregationAverage {
		total /= len(points)
	}
	return total, true
}
