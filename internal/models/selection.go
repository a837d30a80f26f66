package models

import "time"

// SelectedDataPoints is the result of probing a chart at an arbitrary
// date. Current and Previous are matched on the current-period axis;
// UnmappedPrevious carries the original previous-period point whose
// value Previous reports.
type SelectedDataPoints struct {
	Current          *DataPoint `json:"current,omitempty"`
	Previous         *DataPoint `json:"previous,omitempty"`
	UnmappedPrevious *DataPoint `json:"unmappedPrevious,omitempty"`
}

// SelectDataPoints resolves the data point in each series whose bucket
// contains the probe date. Matching is bucket-aligned under the chart's
// granularity, so a probe anywhere within an hour/day/week/month/year
// bucket resolves to that bucket's point. A series with no matching
// bucket contributes nil; a previous-only match is a valid result (the
// comparison baseline can exist before the current period has data).
func SelectDataPoints(probe time.Time, data *ChartData, loc *time.Location) SelectedDataPoints {
	g := data.Granularity
	bucket := g.BucketStart(probe, loc)

	var selected SelectedDataPoints
	for i := range data.CurrentSeries {
		if g.BucketStart(data.CurrentSeries[i].Date, loc).Equal(bucket) {
			selected.Current = &data.CurrentSeries[i]
			break
		}
	}
	for i := range data.MappedPrevious {
		if g.BucketStart(data.MappedPrevious[i].Date, loc).Equal(bucket) {
			selected.Previous = &data.MappedPrevious[i]
			break
		}
	}
	if selected.Previous != nil {
		selected.UnmappedPrevious = findUnmappedPrevious(data, *selected.Previous, loc)
	}
	return selected
}

// findUnmappedPrevious recovers the raw previous-period point behind a
// mapped one by undoing the period offset the caller applied.
func findUnmappedPrevious(data *ChartData, mapped DataPoint, loc *time.Location) *DataPoint {
	g := data.Granularity
	rawDate := mapped.Date.Add(-data.previousDateOffset)
	for i := range data.PreviousSeries {
		if g.SameBucket(data.PreviousSeries[i].Date, rawDate, loc) {
			return &data.PreviousSeries[i]
		}
	}
	return nil
}
