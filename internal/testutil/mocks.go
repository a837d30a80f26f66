package testutil

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"sds/internal/gateway"
	"sds/internal/models"
	"sds/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockGateway implements gateway.Interface with injectable behavior and
// lock-free call counters, so concurrent coalescing tests can assert on
// the number of fetches that actually went out.
type MockGateway struct {
	SeriesFn  func(ctx context.Context, req gateway.SeriesRequest) (*gateway.RawSeries, error)
	WordAdsFn func(ctx context.Context, req gateway.WordAdsRequest) (*gateway.RawSeries, error)
	TopListFn func(ctx context.Context, req gateway.TopListRequest) (*gateway.RawItemList, error)
	DevicesFn func(ctx context.Context, req gateway.DeviceRequest) ([]gateway.RawDeviceItem, error)
	UTMFn     func(ctx context.Context, req gateway.UTMRequest) ([]gateway.RawUTMItem, error)

	SeriesCalls  atomic.Int64
	WordAdsCalls atomic.Int64
	TopListCalls atomic.Int64
	DevicesCalls atomic.Int64
	UTMCalls     atomic.Int64
}

func (m *MockGateway) FetchSeries(ctx context.Context, req gateway.SeriesRequest) (*gateway.RawSeries, error) {
	m.SeriesCalls.Inc()
	if m.SeriesFn != nil {
		return m.SeriesFn(ctx, req)
	}
	return &gateway.RawSeries{Unit: req.Unit}, nil
}

func (m *MockGateway) FetchWordAdsSeries(ctx context.Context, req gateway.WordAdsRequest) (*gateway.RawSeries, error) {
	m.WordAdsCalls.Inc()
	if m.WordAdsFn != nil {
		return m.WordAdsFn(ctx, req)
	}
	return &gateway.RawSeries{Unit: req.Unit}, nil
}

func (m *MockGateway) FetchTopList(ctx context.Context, req gateway.TopListRequest) (*gateway.RawItemList, error) {
	m.TopListCalls.Inc()
	if m.TopListFn != nil {
		return m.TopListFn(ctx, req)
	}
	return &gateway.RawItemList{}, nil
}

func (m *MockGateway) FetchDeviceBreakdown(ctx context.Context, req gateway.DeviceRequest) ([]gateway.RawDeviceItem, error) {
	m.DevicesCalls.Inc()
	if m.DevicesFn != nil {
		return m.DevicesFn(ctx, req)
	}
	return nil, nil
}

func (m *MockGateway) FetchUTM(ctx context.Context, req gateway.UTMRequest) ([]gateway.RawUTMItem, error) {
	m.UTMCalls.Inc()
	if m.UTMFn != nil {
		return m.UTMFn(ctx, req)
	}
	return nil, nil
}

// MockMetrics implements providers.MetricsProviderInterface with plain
// counters; label values are not distinguished.
type MockMetrics struct {
	RequestsTotal       atomic.Int64
	ResponseCacheHits   atomic.Int64
	ResponseCacheMisses atomic.Int64
	StatsCacheHits      atomic.Int64
	StatsCacheMisses    atomic.Int64
	CoalescedFetches    atomic.Int64
	GatewayFetches      atomic.Int64

	mu            sync.Mutex
	cachedEntries map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                      { m.RequestsTotal.Inc() }
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration)      {}
func (m *MockMetrics) IncResponseCacheHits()                                 { m.ResponseCacheHits.Inc() }
func (m *MockMetrics) IncResponseCacheMisses()                               { m.ResponseCacheMisses.Inc() }
func (m *MockMetrics) IncStatsCacheHits(_ string)                            { m.StatsCacheHits.Inc() }
func (m *MockMetrics) IncStatsCacheMisses(_ string)                          { m.StatsCacheMisses.Inc() }
func (m *MockMetrics) IncCoalescedFetches(_ string)                          { m.CoalescedFetches.Inc() }
func (m *MockMetrics) IncGatewayFetches(_ string)                            { m.GatewayFetches.Inc() }
func (m *MockMetrics) ObserveGatewayFetchDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) SetCachedEntries(family string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cachedEntries == nil {
		m.cachedEntries = make(map[string]int)
	}
	m.cachedEntries[family] = count
}

func (m *MockMetrics) CachedEntries(family string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cachedEntries[family]
}

// MockStatsService satisfies services.StatsServiceInterface for
// controller tests without pulling in the real orchestration.
type MockStatsService struct {
	SiteStatsFn       func(ctx context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error)
	WordAdsFn         func(ctx context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error)
	TopListFn         func(ctx context.Context, item models.TopListItemType, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity, limit int, opts models.TopListOptions) (*models.TopListResponse, error)
	RealtimeTopListFn func(ctx context.Context, item models.TopListItemType) (*models.TopListResponse, error)
	Timezone          *time.Location
	EntryCounts       map[string]int
}

func (m *MockStatsService) GetSiteStats(ctx context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error) {
	if m.SiteStatsFn != nil {
		return m.SiteStatsFn(ctx, interval, granularity)
	}
	return &models.SiteMetricsResponse{}, nil
}

func (m *MockStatsService) GetWordAdsStats(ctx context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error) {
	if m.WordAdsFn != nil {
		return m.WordAdsFn(ctx, date, granularity)
	}
	return &models.WordAdsMetricsResponse{}, nil
}

func (m *MockStatsService) GetTopListData(ctx context.Context, item models.TopListItemType, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity, limit int, opts models.TopListOptions) (*models.TopListResponse, error) {
	if m.TopListFn != nil {
		return m.TopListFn(ctx, item, metric, interval, granularity, limit, opts)
	}
	return &models.TopListResponse{Items: []models.TopListItem{}}, nil
}

func (m *MockStatsService) GetRealtimeTopListData(ctx context.Context, item models.TopListItemType) (*models.TopListResponse, error) {
	if m.RealtimeTopListFn != nil {
		return m.RealtimeTopListFn(ctx, item)
	}
	return &models.TopListResponse{Items: []models.TopListItem{}}, nil
}

func (m *MockStatsService) GetSupportedMetrics(item models.TopListItemType) []models.SiteMetric {
	if item == models.ItemFileDownloads {
		return []models.SiteMetric{models.MetricDownloads}
	}
	return []models.SiteMetric{models.MetricViews}
}

func (m *MockStatsService) SiteTimezone() *time.Location {
	if m.Timezone != nil {
		return m.Timezone
	}
	return time.UTC
}

func (m *MockStatsService) CachedEntryCounts() map[string]int {
	if m.EntryCounts != nil {
		return m.EntryCounts
	}
	return map[string]int{}
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// Clock is a manually advanced time source for TTL tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
