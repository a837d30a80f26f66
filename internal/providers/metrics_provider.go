package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"sds/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncResponseCacheHits()
	IncResponseCacheMisses()
	IncStatsCacheHits(family string)
	IncStatsCacheMisses(family string)
	IncCoalescedFetches(family string)
	IncGatewayFetches(family string)
	ObserveGatewayFetchDuration(family string, duration time.Duration)
	SetCachedEntries(family string, count int)
}

type MetricsProvider struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	responseCacheHits    prometheus.Counter
	responseCacheMisses  prometheus.Counter
	statsCacheHits       *prometheus.CounterVec
	statsCacheMisses     *prometheus.CounterVec
	coalescedFetches     *prometheus.CounterVec
	gatewayFetches       *prometheus.CounterVec
	gatewayFetchDuration *prometheus.HistogramVec
	cachedEntries        *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncResponseCacheHits() {
	m.responseCacheHits.Inc()
}

func (m *MetricsProvider) IncResponseCacheMisses() {
	m.responseCacheMisses.Inc()
}

func (m *MetricsProvider) IncStatsCacheHits(family string) {
	m.statsCacheHits.WithLabelValues(family).Inc()
}

func (m *MetricsProvider) IncStatsCacheMisses(family string) {
	m.statsCacheMisses.WithLabelValues(family).Inc()
}

func (m *MetricsProvider) IncCoalescedFetches(family string) {
	m.coalescedFetches.WithLabelValues(family).Inc()
}

func (m *MetricsProvider) IncGatewayFetches(family string) {
	m.gatewayFetches.WithLabelValues(family).Inc()
}

func (m *MetricsProvider) ObserveGatewayFetchDuration(family string, duration time.Duration) {
	m.gatewayFetchDuration.WithLabelValues(family).Observe(duration.Seconds())
}

func (m *MetricsProvider) SetCachedEntries(family string, count int) {
	m.cachedEntries.WithLabelValues(family).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sds_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sds_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		responseCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sds_response_cache_hits_total",
			Help: "Total number of HTTP response cache hits",
		}),

		responseCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sds_response_cache_misses_total",
			Help: "Total number of HTTP response cache misses",
		}),

		statsCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sds_stats_cache_hits_total",
			Help: "Total number of typed stats cache hits per metric family",
		}, []string{"family"}),

		statsCacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sds_stats_cache_misses_total",
			Help: "Total number of typed stats cache misses per metric family",
		}, []string{"family"}),

		coalescedFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sds_coalesced_fetches_total",
			Help: "Fetches that joined an identical in-flight request instead of hitting the gateway",
		}, []string{"family"}),

		gatewayFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sds_gateway_fetches_total",
			Help: "Total number of remote gateway fetches per metric family",
		}, []string{"family"}),

		gatewayFetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sds_gateway_fetch_duration_seconds",
			Help:    "Remote gateway fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"family"}),

		cachedEntries: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sds_cached_entries",
			Help: "Current number of cached entities per metric family",
		}, []string{"family"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                         {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)         {}
func (n *noopMetrics) IncResponseCacheHits()                                    {}
func (n *noopMetrics) IncResponseCacheMisses()                                  {}
func (n *noopMetrics) IncStatsCacheHits(_ string)                               {}
func (n *noopMetrics) IncStatsCacheMisses(_ string)                             {}
func (n *noopMetrics) IncCoalescedFetches(_ string)                             {}
func (n *noopMetrics) IncGatewayFetches(_ string)                               {}
func (n *noopMetrics) ObserveGatewayFetchDuration(_ string, _ time.Duration)    {}
func (n *noopMetrics) SetCachedEntries(_ string, _ int)                         {}
