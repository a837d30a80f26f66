package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func series(values ...int) []DataPoint {
	points := make([]DataPoint, len(values))
	for i, v := range values {
		points[i] = DataPoint{Date: day(i + 1), Value: v}
	}
	return points
}

func TestTotalValue_Sum(t *testing.T) {
	total, ok := TotalValue(series(1, 2, 3), AggregationSum)
	require.True(t, ok)
	assert.Equal(t, 6, total)
}

func TestTotalValue_Average(t *testing.T) {
	total, ok := TotalValue(series(2, 4, 6), AggregationAverage)
	require.True(t, ok)
	assert.Equal(t, 4, total)
}

func TestTotalValue_EmptySeries(t *testing.T) {
	_, ok := TotalValue(nil, AggregationSum)
	assert.False(t, ok)
}

func TestDateInterval_Preceding(t *testing.T) {
	interval := DateInterval{Start: day(8), End: day(15)}
	prev := interval.Preceding()
	assert.Equal(t, day(1), prev.Start)
	assert.Equal(t, day(8), prev.End)
	assert.Equal(t, interval.Duration(), prev.Duration())
}

func TestDateInterval_ContainsEndExclusive(t *testing.T) {
	interval := DateInterval{Start: day(1), End: day(8)}
	assert.True(t, interval.Contains(day(1)))
	assert.True(t, interval.Contains(day(7)))
	assert.False(t, interval.Contains(day(8)))
}

func TestNewChartData_SignificantPoints(t *testing.T) {
	current := series(0, 0, 5, 3, 0)
	data := NewChartData(MetricViews, GranularityDay, 8, current, 0, nil, nil, 0)

	require.NotNil(t, data.SignificantPoints.CurrentMax)
	assert.Equal(t, 5, data.SignificantPoints.CurrentMax.Value)
	assert.Equal(t, day(3), data.SignificantPoints.CurrentMax.Date)

	// Zero points are not minima; the smallest nonzero value wins.
	require.NotNil(t, data.SignificantPoints.CurrentMin)
	assert.Equal(t, 3, data.SignificantPoints.CurrentMin.Value)
	assert.Equal(t, day(4), data.SignificantPoints.CurrentMin.Date)

	assert.Equal(t, 5, data.MaxValue)
	assert.False(t, data.IsEmptyOrZero)
}

func TestNewChartData_MaxTieKeepsFirst(t *testing.T) {
	data := NewChartData(MetricViews, GranularityDay, 0, series(2, 7, 7, 1), 0, nil, nil, 0)
	require.NotNil(t, data.SignificantPoints.CurrentMax)
	assert.Equal(t, day(2), data.SignificantPoints.CurrentMax.Date)
}

func TestNewChartData_AllZeroSeries(t *testing.T) {
	data := NewChartData(MetricViews, GranularityDay, 0, series(0, 0, 0), 0, series(0, 0), nil, 0)

	require.NotNil(t, data.SignificantPoints.CurrentMax)
	assert.Equal(t, day(1), data.SignificantPoints.CurrentMax.Date)
	assert.Nil(t, data.SignificantPoints.CurrentMin)
	assert.True(t, data.IsEmptyOrZero)
	assert.False(t, data.IsEmpty())
}

func TestNewChartData_MaxValueSpansBothSeries(t *testing.T) {
	current := series(1, 2)
	mapped := []DataPoint{{Date: day(1), Value: 9}}
	data := NewChartData(MetricViews, GranularityDay, 3, current, 9, mapped, mapped, 0)
	assert.Equal(t, 9, data.MaxValue)
	require.NotNil(t, data.SignificantPoints.PreviousMax)
	assert.Equal(t, 9, data.SignificantPoints.PreviousMax.Value)
}

func TestNewChartData_Empty(t *testing.T) {
	data := NewChartData(MetricViews, GranularityDay, 0, nil, 0, nil, nil, 0)
	assert.True(t, data.IsEmpty())
	assert.True(t, data.IsEmptyOrZero)
	assert.Nil(t, data.SignificantPoints.CurrentMax)
}

func TestMapPreviousPoints_ShiftsOntoCurrentAxis(t *testing.T) {
	previous := []DataPoint{
		{Date: day(1), Value: 10},
		{Date: day(2), Value: 20},
	}
	current := DateInterval{Start: day(8), End: day(15)}
	offset := 7 * 24 * time.Hour

	mapped := MapPreviousPoints(previous, offset, current)
	require.Len(t, mapped, 2)
	assert.Equal(t, day(8), mapped[0].Date)
	assert.Equal(t, 10, mapped[0].Value)
	assert.Equal(t, day(9), mapped[1].Date)
}

func TestMapPreviousPoints_DropsOutOfRange(t *testing.T) {
	previous := []DataPoint{
		{Date: day(1), Value: 10},
		{Date: day(14), Value: 99}, // maps past the interval end
	}
	current := DateInterval{Start: day(8), End: day(15)}

	mapped := MapPreviousPoints(previous, 7*24*time.Hour, current)
	require.Len(t, mapped, 1)
	assert.Equal(t, 10, mapped[0].Value)
}

func TestMapPreviousPoints_EmptyInput(t *testing.T) {
	assert.Nil(t, MapPreviousPoints(nil, time.Hour, DateInterval{Start: day(1), End: day(2)}))
}
