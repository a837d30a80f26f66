package models

// SiteMetric identifies one member of the site-metrics family.
type SiteMetric string

const (
	MetricViews     SiteMetric = "views"
	MetricVisitors  SiteMetric = "visitors"
	MetricLikes     SiteMetric = "likes"
	MetricComments  SiteMetric = "comments"
	MetricPosts     SiteMetric = "posts"
	MetricDownloads SiteMetric = "downloads"
)

// SupportedSiteMetrics lists the members fetched for time series.
// Downloads appears only in top lists (file downloads category).
var SupportedSiteMetrics = []SiteMetric{
	MetricViews, MetricVisitors, MetricLikes, MetricComments, MetricPosts,
}

func (m SiteMetric) Aggregation() AggregationStrategy {
	return AggregationSum
}

// WordAdsMetric identifies one member of the ad-metrics family.
type WordAdsMetric string

const (
	AdMetricImpressions WordAdsMetric = "impressions"
	AdMetricRevenue     WordAdsMetric = "revenue"
	AdMetricCPM         WordAdsMetric = "cpm"
)

var SupportedWordAdsMetrics = []WordAdsMetric{
	AdMetricImpressions, AdMetricRevenue, AdMetricCPM,
}

func (m WordAdsMetric) Aggregation() AggregationStrategy {
	// CPM is a rate, averaging is the only meaningful reduction.
	if m == AdMetricCPM {
		return AggregationAverage
	}
	return AggregationSum
}

// SiteMetricSet is a fixed mapping from a site metric to an optional
// integer total. A missing key means the metric was not reported.
type SiteMetricSet map[SiteMetric]int

func (s SiteMetricSet) Value(m SiteMetric) (int, bool) {
	v, ok := s[m]
	return v, ok
}

type WordAdsMetricSet map[WordAdsMetric]int

func (s WordAdsMetricSet) Value(m WordAdsMetric) (int, bool) {
	v, ok := s[m]
	return v, ok
}

// SiteMetricsResponse is the mapped per-granularity result for the
// site-metrics family.
type SiteMetricsResponse struct {
	Total  SiteMetricSet              `json:"total"`
	Series map[SiteMetric][]DataPoint `json:"series"`
}

// WordAdsMetricsResponse is the mapped result for the ad-metrics family.
type WordAdsMetricsResponse struct {
	Total  WordAdsMetricSet              `json:"total"`
	Series map[WordAdsMetric][]DataPoint `json:"series"`
}
