package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"sds/internal/models"
	"sds/internal/providers"
	"sds/internal/services"
)

type ApiController struct {
	logger providers.Logger
	stats  services.StatsServiceInterface
	charts services.ChartServiceInterface
	cache  providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, stats services.StatsServiceInterface, charts services.ChartServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger: logger,
		stats:  stats,
		charts: charts,
		cache:  cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, gson)
}

func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps domain errors onto HTTP status codes: bad
// combinations are the caller's fault, plan gating is forbidden,
// anything else means the upstream gateway failed.
func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	var gated *services.FeatureGatedError
	switch {
	case errors.Is(err, services.ErrUnsupportedCombination):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &gated):
		http.Error(w, gated.Error(), http.StatusForbidden)
	default:
		ac.logger.Errorf(providers.TypeApp, "Upstream fetch failed: %s", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}
}

// parseDate accepts the two wire layouts used throughout the API,
// interpreted in the site's reporting timezone.
func (ac *ApiController) parseDate(s string) (time.Time, error) {
	loc := ac.stats.SiteTimezone()
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func (ac *ApiController) parseInterval(r *http.Request) (models.DateInterval, error) {
	start, err := ac.parseDate(r.URL.Query().Get("start"))
	if err != nil {
		return models.DateInterval{}, err
	}
	end, err := ac.parseDate(r.URL.Query().Get("end"))
	if err != nil {
		return models.DateInterval{}, err
	}
	if !end.After(start) {
		return models.DateInterval{}, fmt.Errorf("end %s is not after start %s", end, start)
	}
	return models.DateInterval{Start: start, End: end}, nil
}

func parseUnit(r *http.Request) (models.Granularity, error) {
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		return models.GranularityDay, nil
	}
	return models.ParseGranularity(unit)
}

func (ac *ApiController) GetSiteStats(w http.ResponseWriter, r *http.Request) {
	interval, err := ac.parseInterval(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	granularity, err := parseUnit(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("site:%d:%d:%s", interval.Start.Unix(), interval.End.Unix(), granularity)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.stats.GetSiteStats(r.Context(), interval, granularity)
	})
}

func (ac *ApiController) GetWordAdsStats(w http.ResponseWriter, r *http.Request) {
	date, err := ac.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	granularity, err := parseUnit(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("wordads:%d:%s", date.Unix(), granularity)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.stats.GetWordAdsStats(r.Context(), date, granularity)
	})
}

func (ac *ApiController) GetTopList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	item, ok := models.ParseTopListItemType(query.Get("item"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	interval, err := ac.parseInterval(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	granularity, err := parseUnit(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	metric := models.SiteMetric(query.Get("metric"))
	if metric == "" {
		supported := ac.stats.GetSupportedMetrics(item)
		if len(supported) == 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		metric = supported[0]
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	opts := models.TopListOptions{
		LocationLevel: models.LocationLevel(query.Get("level")),
		UTMGrouping:   models.UTMGrouping(query.Get("grouping")),
	}

	key := fmt.Sprintf("toplist:%s:%s:%s:%s:%d:%d:%s:%d",
		item, metric, opts.LocationLevel, opts.UTMGrouping,
		interval.Start.Unix(), interval.End.Unix(), granularity, limit)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.stats.GetTopListData(r.Context(), item, metric, interval, granularity, limit, opts)
	})
}

// GetRealtimeTopList intentionally skips the response cache: realtime
// answers are always computed live.
func (ac *ApiController) GetRealtimeTopList(w http.ResponseWriter, r *http.Request) {
	item, ok := models.ParseTopListItemType(r.URL.Query().Get("item"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := ac.stats.GetRealtimeTopListData(r.Context(), item)
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, gson)
}

func (ac *ApiController) parseChartQuery(r *http.Request) (models.SiteMetric, models.DateInterval, models.Granularity, error) {
	metric := models.SiteMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = models.MetricViews
	}
	interval, err := ac.parseInterval(r)
	if err != nil {
		return "", models.DateInterval{}, 0, err
	}
	granularity, err := parseUnit(r)
	if err != nil {
		return "", models.DateInterval{}, 0, err
	}
	return metric, interval, granularity, nil
}

func (ac *ApiController) GetChartData(w http.ResponseWriter, r *http.Request) {
	metric, interval, granularity, err := ac.parseChartQuery(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("chart:%s:%d:%d:%s", metric, interval.Start.Unix(), interval.End.Unix(), granularity)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.charts.GetChartData(r.Context(), metric, interval, granularity)
	})
}

func (ac *ApiController) GetChartSelection(w http.ResponseWriter, r *http.Request) {
	metric, interval, granularity, err := ac.parseChartQuery(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	probe, err := ac.parseDate(r.URL.Query().Get("probe"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("selection:%s:%d:%d:%s:%d",
		metric, interval.Start.Unix(), interval.End.Unix(), granularity, probe.Unix())
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		data, err := ac.charts.GetChartData(r.Context(), metric, interval, granularity)
		if err != nil {
			return nil, err
		}
		return ac.charts.SelectDataPoints(probe, data), nil
	})
}
