package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sds/internal/models"
	"sds/internal/services"
	"sds/internal/testutil"
)

func newTestController(stats *testutil.MockStatsService, cache *testutil.MockCache) *ApiController {
	if cache == nil {
		cache = testutil.NewMockCache()
	}
	return NewApiController(&testutil.MockLogger{}, stats, services.NewChartService(stats), cache)
}

func doGet(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestGetSiteStats_OK(t *testing.T) {
	calls := 0
	stats := &testutil.MockStatsService{
		SiteStatsFn: func(_ context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error) {
			calls++
			assert.Equal(t, models.GranularityWeek, granularity)
			assert.Equal(t, 1, interval.Start.Day())
			return &models.SiteMetricsResponse{
				Total: models.SiteMetricSet{models.MetricViews: 42},
			}, nil
		},
	}
	cache := testutil.NewMockCache()
	ac := newTestController(stats, cache)

	rr := doGet(t, ac.GetSiteStats, "/site-stats?start=2024-03-01&end=2024-03-08&unit=week")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp models.SiteMetricsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Total[models.MetricViews])

	// Second identical request is served from the response cache.
	rr = doGet(t, ac.GetSiteStats, "/site-stats?start=2024-03-01&end=2024-03-08&unit=week")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, calls)
	assert.Len(t, cache.Data, 1)
}

func TestGetSiteStats_BadDate(t *testing.T) {
	ac := newTestController(&testutil.MockStatsService{}, nil)
	rr := doGet(t, ac.GetSiteStats, "/site-stats?start=yesterday&end=2024-03-08")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSiteStats_EndNotAfterStart(t *testing.T) {
	ac := newTestController(&testutil.MockStatsService{}, nil)
	rr := doGet(t, ac.GetSiteStats, "/site-stats?start=2024-03-08&end=2024-03-01")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSiteStats_BadUnit(t *testing.T) {
	ac := newTestController(&testutil.MockStatsService{}, nil)
	rr := doGet(t, ac.GetSiteStats, "/site-stats?start=2024-03-01&end=2024-03-08&unit=decade")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSiteStats_UpstreamFailureIsBadGateway(t *testing.T) {
	stats := &testutil.MockStatsService{
		SiteStatsFn: func(_ context.Context, _ models.DateInterval, _ models.Granularity) (*models.SiteMetricsResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	ac := newTestController(stats, nil)
	rr := doGet(t, ac.GetSiteStats, "/site-stats?start=2024-03-01&end=2024-03-08")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGetWordAdsStats_OK(t *testing.T) {
	stats := &testutil.MockStatsService{
		WordAdsFn: func(_ context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error) {
			assert.Equal(t, 10, date.Day())
			assert.Equal(t, models.GranularityDay, granularity)
			return &models.WordAdsMetricsResponse{
				Total: models.WordAdsMetricSet{models.AdMetricRevenue: 123},
			}, nil
		},
	}
	ac := newTestController(stats, nil)

	rr := doGet(t, ac.GetWordAdsStats, "/wordads-stats?date=2024-03-10")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.WordAdsMetricsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 123, resp.Total[models.AdMetricRevenue])
}

func TestGetTopList_DefaultsMetric(t *testing.T) {
	stats := &testutil.MockStatsService{
		TopListFn: func(_ context.Context, item models.TopListItemType, metric models.SiteMetric, _ models.DateInterval, _ models.Granularity, limit int, _ models.TopListOptions) (*models.TopListResponse, error) {
			assert.Equal(t, models.ItemFileDownloads, item)
			assert.Equal(t, models.MetricDownloads, metric)
			assert.Equal(t, 5, limit)
			return &models.TopListResponse{Items: []models.TopListItem{}}, nil
		},
	}
	ac := newTestController(stats, nil)

	rr := doGet(t, ac.GetTopList, "/toplist?item=fileDownloads&start=2024-03-01&end=2024-03-08&limit=5")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetTopList_UnknownItem(t *testing.T) {
	ac := newTestController(&testutil.MockStatsService{}, nil)
	rr := doGet(t, ac.GetTopList, "/toplist?item=bogus&start=2024-03-01&end=2024-03-08")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTopList_UnsupportedCombination(t *testing.T) {
	stats := &testutil.MockStatsService{
		TopListFn: func(_ context.Context, _ models.TopListItemType, _ models.SiteMetric, _ models.DateInterval, _ models.Granularity, _ int, _ models.TopListOptions) (*models.TopListResponse, error) {
			return nil, services.ErrUnsupportedCombination
		},
	}
	ac := newTestController(stats, nil)
	rr := doGet(t, ac.GetTopList, "/toplist?item=authors&metric=downloads&start=2024-03-01&end=2024-03-08")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTopList_FeatureGatedIsForbidden(t *testing.T) {
	stats := &testutil.MockStatsService{
		TopListFn: func(_ context.Context, _ models.TopListItemType, _ models.SiteMetric, _ models.DateInterval, _ models.Granularity, _ int, _ models.TopListOptions) (*models.TopListResponse, error) {
			return nil, &services.FeatureGatedError{Item: models.ItemVideos, Message: "upgrade required"}
		},
	}
	ac := newTestController(stats, nil)
	rr := doGet(t, ac.GetTopList, "/toplist?item=videos&start=2024-03-01&end=2024-03-08")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetTopList_PassesOptions(t *testing.T) {
	stats := &testutil.MockStatsService{
		TopListFn: func(_ context.Context, _ models.TopListItemType, _ models.SiteMetric, _ models.DateInterval, _ models.Granularity, _ int, opts models.TopListOptions) (*models.TopListResponse, error) {
			assert.Equal(t, models.LocationCountries, opts.LocationLevel)
			return &models.TopListResponse{Items: []models.TopListItem{}}, nil
		},
	}
	ac := newTestController(stats, nil)
	rr := doGet(t, ac.GetTopList, "/toplist?item=locations&start=2024-03-01&end=2024-03-08&level=countries")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetRealtimeTopList_NeverCached(t *testing.T) {
	calls := 0
	stats := &testutil.MockStatsService{
		RealtimeTopListFn: func(_ context.Context, item models.TopListItemType) (*models.TopListResponse, error) {
			calls++
			assert.Equal(t, models.ItemPostsAndPages, item)
			return &models.TopListResponse{Items: []models.TopListItem{}}, nil
		},
	}
	cache := testutil.NewMockCache()
	ac := newTestController(stats, cache)

	for i := 0; i < 2; i++ {
		rr := doGet(t, ac.GetRealtimeTopList, "/realtime-toplist?item=postsAndPages")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, cache.Data)
}

func TestGetChartData_OK(t *testing.T) {
	stats := &testutil.MockStatsService{
		SiteStatsFn: func(_ context.Context, interval models.DateInterval, _ models.Granularity) (*models.SiteMetricsResponse, error) {
			return &models.SiteMetricsResponse{
				Total: models.SiteMetricSet{models.MetricViews: 10},
				Series: map[models.SiteMetric][]models.DataPoint{
					models.MetricViews: {{Date: interval.Start, Value: 10}},
				},
			}, nil
		},
	}
	ac := newTestController(stats, nil)

	rr := doGet(t, ac.GetChartData, "/chart?metric=views&start=2024-03-08&end=2024-03-15")
	require.Equal(t, http.StatusOK, rr.Code)

	var data models.ChartData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	assert.Equal(t, 10, data.CurrentTotal)
	assert.Equal(t, models.MetricViews, data.Metric)
}

func TestGetChartSelection_OK(t *testing.T) {
	stats := &testutil.MockStatsService{
		SiteStatsFn: func(_ context.Context, interval models.DateInterval, _ models.Granularity) (*models.SiteMetricsResponse, error) {
			return &models.SiteMetricsResponse{
				Series: map[models.SiteMetric][]models.DataPoint{
					models.MetricViews: {{Date: interval.Start, Value: 33}},
				},
			}, nil
		},
	}
	ac := newTestController(stats, nil)

	rr := doGet(t, ac.GetChartSelection, "/chart/selection?metric=views&start=2024-03-08&end=2024-03-15&probe=2024-03-08")
	require.Equal(t, http.StatusOK, rr.Code)

	var sel models.SelectedDataPoints
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sel))
	require.NotNil(t, sel.Current)
	assert.Equal(t, 33, sel.Current.Value)
}

func TestGetChartSelection_MissingProbe(t *testing.T) {
	ac := newTestController(&testutil.MockStatsService{}, nil)
	rr := doGet(t, ac.GetChartSelection, "/chart/selection?metric=views&start=2024-03-08&end=2024-03-15")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
