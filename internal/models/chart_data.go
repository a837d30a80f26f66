package models

import "time"

// SignificantPoints holds the maximum and minimum value points of the
// current and mapped-previous series. Max ties resolve to the first
// occurrence; zero-value points are never eligible as minima so data
// gaps are not flagged as a "low point".
type SignificantPoints struct {
	CurrentMax  *DataPoint `json:"currentMax,omitempty"`
	CurrentMin  *DataPoint `json:"currentMin,omitempty"`
	PreviousMax *DataPoint `json:"previousMax,omitempty"`
	PreviousMin *DataPoint `json:"previousMin,omitempty"`
}

// ChartData is the aggregate view-model for one metric at one
// granularity. It is immutable after construction and safe to share
// across concurrent readers.
type ChartData struct {
	Metric             SiteMetric        `json:"metric"`
	Granularity        Granularity       `json:"granularity"`
	CurrentTotal       int               `json:"currentTotal"`
	CurrentSeries      []DataPoint       `json:"currentSeries"`
	PreviousTotal      int               `json:"previousTotal"`
	PreviousSeries     []DataPoint       `json:"previousSeries"`
	MappedPrevious     []DataPoint       `json:"mappedPreviousSeries"`
	MaxValue           int               `json:"maxValue"`
	SignificantPoints  SignificantPoints `json:"significantPoints"`
	IsEmptyOrZero      bool              `json:"isEmptyOrZero"`
	previousDateOffset time.Duration
}

// NewChartData computes all derived values in a single pass per series.
// mappedPrevious is the previous series re-dated onto the current axis;
// the mapping is owned by the caller, previousOffset is the shift it
// applied (mapped date = raw previous date + previousOffset).
func NewChartData(
	metric SiteMetric,
	granularity Granularity,
	currentTotal int,
	currentSeries []DataPoint,
	previousTotal int,
	previousSeries []DataPoint,
	mappedPrevious []DataPoint,
	previousOffset time.Duration,
) *ChartData {
	d := &ChartData{
		Metric:             metric,
		Granularity:        granularity,
		CurrentTotal:       currentTotal,
		CurrentSeries:      currentSeries,
		PreviousTotal:      previousTotal,
		PreviousSeries:     previousSeries,
		MappedPrevious:     mappedPrevious,
		previousDateOffset: previousOffset,
	}

	maxValue := 0
	curMax, curMin := scanSeries(currentSeries, &maxValue)
	prevMax, prevMin := scanSeries(mappedPrevious, &maxValue)

	d.MaxValue = maxValue
	d.SignificantPoints = SignificantPoints{
		CurrentMax:  curMax,
		CurrentMin:  curMin,
		PreviousMax: prevMax,
		PreviousMin: prevMin,
	}
	d.IsEmptyOrZero = allZero(currentSeries) && allZero(previousSeries)
	return d
}

func scanSeries(points []DataPoint, maxValue *int) (maxPoint, minPoint *DataPoint) {
	runningMax := -1
	for i := range points {
		p := points[i]
		if p.Value > *maxValue {
			*maxValue = p.Value
		}
		if p.Value > runningMax {
			runningMax = p.Value
			maxPoint = &points[i]
		}
		if p.Value > 0 && (minPoint == nil || p.Value < minPoint.Value) {
			minPoint = &points[i]
		}
	}
	return maxPoint, minPoint
}

func allZero(points []DataPoint) bool {
	for _, p := range points {
		if p.Value != 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether both raw series have no points at all.
func (d *ChartData) IsEmpty() bool {
	return len(d.CurrentSeries) == 0 && len(d.PreviousSeries) == 0
}

// PreviousDateOffset is the shift the caller applied when mapping the
// previous series onto the current axis.
func (d *ChartData) PreviousDateOffset() time.Duration {
	return d.previousDateOffset
}

// MapPreviousPoints re-dates previous-period points onto the current
// period's axis by offset and drops points that land outside current.
// All previous data is preserved even when current data is partial or
// empty.
func MapPreviousPoints(previous []DataPoint, offset time.Duration, current DateInterval) []DataPoint {
	if len(previous) == 0 {
		return nil
	}
	mapped := make([]DataPoint, 0, len(previous))
	for _, p := range previous {
		date := p.Date.Add(offset)
		if !current.Contains(date) {
			continue
		}
		mapped = append(mapped, DataPoint{Date: date, Value: p.Value})
	}
	return mapped
}
