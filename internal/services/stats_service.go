package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"sds/internal/gateway"
	"sds/internal/models"
	"sds/internal/providers"
	"sds/internal/structures"
)

const (
	familySite    = "site_stats"
	familyWordAds = "wordads"
	familyTopList = "toplist"

	realtimeWindow = 30 * time.Minute
)

// supportedMetricsByItem fixes which metric each top-list category can
// be ranked by. Anything else is an unsupported combination.
var supportedMetricsByItem = map[models.TopListItemType][]models.SiteMetric{
	models.ItemPostsAndPages: {models.MetricViews},
	models.ItemAuthors:       {models.MetricViews},
	models.ItemReferrers:     {models.MetricViews},
	models.ItemLocations:     {models.MetricViews},
	models.ItemDevices:       {models.MetricViews},
	models.ItemExternalLinks: {models.MetricViews},
	models.ItemFileDownloads: {models.MetricDownloads},
	models.ItemSearchTerms:   {models.MetricViews},
	models.ItemVideos:        {models.MetricViews},
	models.ItemArchive:       {models.MetricViews},
	models.ItemUTM:           {models.MetricViews},
}

type StatsServiceInterface interface {
	GetSiteStats(ctx context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error)
	GetWordAdsStats(ctx context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error)
	GetTopListData(ctx context.Context, item models.TopListItemType, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity, limit int, opts models.TopListOptions) (*models.TopListResponse, error)
	GetRealtimeTopListData(ctx context.Context, item models.TopListItemType) (*models.TopListResponse, error)
	GetSupportedMetrics(item models.TopListItemType) []models.SiteMetric
	SiteTimezone() *time.Location
	CachedEntryCounts() map[string]int
}

type siteStatsKey struct {
	start       int64
	end         int64
	granularity models.Granularity
}

func (k siteStatsKey) String() string {
	return fmt.Sprintf("site:%d:%d:%s", k.start, k.end, k.granularity)
}

type wordAdsKey struct {
	day         int64
	granularity models.Granularity
}

func (k wordAdsKey) String() string {
	return fmt.Sprintf("wordads:%d:%s", k.day, k.granularity)
}

type topListKey struct {
	item        models.TopListItemType
	metric      models.SiteMetric
	level       models.LocationLevel
	grouping    models.UTMGrouping
	start       int64
	end         int64
	granularity models.Granularity
	limit       int
}

func (k topListKey) String() string {
	return fmt.Sprintf("toplist:%s:%s:%s:%s:%d:%d:%s:%d",
		k.item, k.metric, k.level, k.grouping, k.start, k.end, k.granularity, k.limit)
}

// StatsService orchestrates the cache stores and the remote gateway:
// build a cache key, consult the store, on miss fetch and map raw data,
// compute the TTL and write back. Each metric family owns its store.
type StatsService struct {
	gateway    gateway.Interface
	normalizer *TimeZoneNormalizer
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	collator   *collate.Collator

	currentPeriodTTL time.Duration
	defaultLimit     int
	now              func() time.Time

	siteStats *cacheStore[siteStatsKey, *models.SiteMetricsResponse]
	wordAds   *cacheStore[wordAdsKey, *models.WordAdsMetricsResponse]
	topLists  *cacheStore[topListKey, *models.TopListResponse]
}

func NewStatsService(conf *structures.Config, gw gateway.Interface, normalizer *TimeZoneNormalizer, logger providers.Logger, metrics providers.MetricsProviderInterface) StatsServiceInterface {
	return newStatsService(conf, gw, normalizer, logger, metrics, time.Now)
}

func newStatsService(conf *structures.Config, gw gateway.Interface, normalizer *TimeZoneNormalizer, logger providers.Logger, metrics providers.MetricsProviderInterface, now func() time.Time) *StatsService {
	tag, err := language.Parse(conf.Stats.Locale)
	if err != nil {
		tag = language.English
	}

	return &StatsService{
		gateway:          gw,
		normalizer:       normalizer,
		logger:           logger,
		metrics:          metrics,
		collator:         collate.New(tag, collate.IgnoreCase),
		currentPeriodTTL: conf.Stats.CurrentPeriodTTL,
		defaultLimit:     conf.Stats.DefaultLimit,
		now:              now,
		siteStats:        newCacheStore[siteStatsKey, *models.SiteMetricsResponse](familySite, metrics, now),
		wordAds:          newCacheStore[wordAdsKey, *models.WordAdsMetricsResponse](familyWordAds, metrics, now),
		topLists:         newCacheStore[topListKey, *models.TopListResponse](familyTopList, metrics, now),
	}
}

func (s *StatsService) GetSupportedMetrics(item models.TopListItemType) []models.SiteMetric {
	return supportedMetricsByItem[item]
}

func (s *StatsService) SiteTimezone() *time.Location {
	return s.normalizer.SiteTimezone()
}

func (s *StatsService) CachedEntryCounts() map[string]int {
	return map[string]int{
		familySite:    s.siteStats.len(),
		familyWordAds: s.wordAds.len(),
		familyTopList: s.topLists.len(),
	}
}

// intervalTTL computes the freshness policy: an interval touching the
// current site-local day gets the short TTL, strictly historical data
// is cached for the process lifetime.
func (s *StatsService) intervalTTL(interval models.DateInterval) *time.Duration {
	if s.normalizer.ContainsCurrentDate(interval, s.now()) {
		ttl := s.currentPeriodTTL
		return &ttl
	}
	return nil
}

func (s *StatsService) GetSiteStats(ctx context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error) {
	key := siteStatsKey{start: interval.Start.Unix(), end: interval.End.Unix(), granularity: granularity}

	return s.siteStats.getOrFetch(ctx, key, key.String(), func(ctx context.Context) (*models.SiteMetricsResponse, *time.Duration, error) {
		data, err := s.fetchSiteStats(ctx, interval, granularity)
		if err != nil {
			return nil, nil, err
		}
		return data, s.intervalTTL(interval), nil
	})
}

func (s *StatsService) fetchSiteStats(ctx context.Context, interval models.DateInterval, granularity models.Granularity) (*models.SiteMetricsResponse, error) {
	normalized := s.normalizer.NormalizeInterval(interval)

	if granularity == models.GranularityHour {
		// Hourly granularity is available only for views, so the total
		// has to come from a separate daily fetch; summing the hourly
		// points would undercount a partial day.
		var hourly, daily *gateway.RawSeries

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			hourly, err = s.fetchRawSeries(groupCtx, normalized, models.GranularityHour)
			return err
		})
		group.Go(func() error {
			var err error
			daily, err = s.fetchRawSeries(groupCtx, normalized, models.GranularityDay)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}

		data := s.mapSiteSeries(hourly, models.GranularityHour)
		data.Total = s.mapSiteSeries(daily, models.GranularityDay).Total
		return data, nil
	}

	raw, err := s.fetchRawSeries(ctx, normalized, granularity)
	if err != nil {
		return nil, err
	}
	return s.mapSiteSeries(raw, granularity), nil
}

func (s *StatsService) fetchRawSeries(ctx context.Context, normalized models.DateInterval, unit models.Granularity) (*gateway.RawSeries, error) {
	start := time.Now()
	raw, err := s.gateway.FetchSeries(ctx, gateway.SeriesRequest{
		Start: normalized.Start,
		End:   normalized.End,
		Unit:  unit.String(),
	})
	s.metrics.IncGatewayFetches(familySite)
	s.metrics.ObserveGatewayFetchDuration(familySite, time.Since(start))
	return raw, err
}

func (s *StatsService) mapSiteSeries(raw *gateway.RawSeries, granularity models.Granularity) *models.SiteMetricsResponse {
	now := s.now()
	response := &models.SiteMetricsResponse{
		Total:  models.SiteMetricSet{},
		Series: make(map[models.SiteMetric][]models.DataPoint, len(models.SupportedSiteMetrics)),
	}

	for _, metric := range models.SupportedSiteMetrics {
		points := make([]models.DataPoint, 0, len(raw.Rows))
		for _, row := range raw.Rows {
			value, ok := row.Values[string(metric)]
			if !ok {
				continue
			}
			date, err := s.parsePeriod(row.Period, granularity)
			if err != nil {
				s.logger.Warnf(providers.TypeGateway, "dropping row with bad period %q: %s", row.Period, err)
				continue
			}
			if date.After(now) {
				// Projected buckets must never surface as data.
				continue
			}
			points = append(points, models.DataPoint{Date: date, Value: int(value)})
		}
		response.Series[metric] = points
		if total, ok := models.TotalValue(points, metric.Aggregation()); ok {
			response.Total[metric] = total
		}
	}
	return response
}

// parsePeriod reads a wire period string (gateway timezone convention)
// and reinterprets it into the site's reporting timezone.
func (s *StatsService) parsePeriod(period string, granularity models.Granularity) (time.Time, error) {
	layout := "2006-01-02"
	if granularity == models.GranularityHour {
		layout = "2006-01-02 15:04:05"
	}
	parsed, err := time.ParseInLocation(layout, period, s.normalizer.localTZ)
	if err != nil {
		return time.Time{}, err
	}
	return s.normalizer.ToSiteTZ(parsed), nil
}

func (s *StatsService) GetWordAdsStats(ctx context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error) {
	key := wordAdsKey{
		day:         models.GranularityDay.BucketStart(date, s.SiteTimezone()).Unix(),
		granularity: granularity,
	}

	return s.wordAds.getOrFetch(ctx, key, key.String(), func(ctx context.Context) (*models.WordAdsMetricsResponse, *time.Duration, error) {
		data, err := s.fetchWordAdsStats(ctx, date, granularity)
		if err != nil {
			return nil, nil, err
		}
		var ttl *time.Duration
		if s.normalizer.IsToday(date, s.now()) {
			t := s.currentPeriodTTL
			ttl = &t
		}
		return data, ttl, nil
	})
}

func (s *StatsService) fetchWordAdsStats(ctx context.Context, date time.Time, granularity models.Granularity) (*models.WordAdsMetricsResponse, error) {
	start := time.Now()
	raw, err := s.gateway.FetchWordAdsSeries(ctx, gateway.WordAdsRequest{
		Date:     s.normalizer.ToLocal(date),
		Unit:     granularity.String(),
		Quantity: granularity.PreferredQuantity(),
	})
	s.metrics.IncGatewayFetches(familyWordAds)
	s.metrics.ObserveGatewayFetchDuration(familyWordAds, time.Since(start))
	if err != nil {
		return nil, err
	}

	now := s.now()
	response := &models.WordAdsMetricsResponse{
		Total:  models.WordAdsMetricSet{},
		Series: make(map[models.WordAdsMetric][]models.DataPoint, len(models.SupportedWordAdsMetrics)),
	}
	for _, metric := range models.SupportedWordAdsMetrics {
		points := make([]models.DataPoint, 0, len(raw.Rows))
		for _, row := range raw.Rows {
			value, ok := row.Values[string(metric)]
			if !ok {
				continue
			}
			pointDate, err := s.parsePeriod(row.Period, granularity)
			if err != nil {
				s.logger.Warnf(providers.TypeGateway, "dropping row with bad period %q: %s", row.Period, err)
				continue
			}
			if pointDate.After(now) {
				continue
			}
			points = append(points, models.DataPoint{Date: pointDate, Value: scaleWordAdsValue(metric, value)})
		}
		response.Series[metric] = points
		if total, ok := models.TotalValue(points, metric.Aggregation()); ok {
			response.Total[metric] = total
		}
	}
	return response, nil
}

// scaleWordAdsValue converts wire units into domain integers: monetary
// metrics arrive as floating dollars and are stored in cents.
func scaleWordAdsValue(metric models.WordAdsMetric, value float64) int {
	if metric == models.AdMetricImpressions {
		return int(value)
	}
	return int(math.Round(value * 100))
}

func (s *StatsService) GetTopListData(ctx context.Context, item models.TopListItemType, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity, limit int, opts models.TopListOptions) (*models.TopListResponse, error) {
	if !s.isMetricSupported(item, metric) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedCombination, item, metric)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	key := topListKey{
		item:        item,
		metric:      metric,
		level:       opts.LocationLevel,
		grouping:    opts.UTMGrouping,
		start:       interval.Start.Unix(),
		end:         interval.End.Unix(),
		granularity: granularity,
		limit:       limit,
	}

	return s.topLists.getOrFetch(ctx, key, key.String(), func(ctx context.Context) (*models.TopListResponse, *time.Duration, error) {
		data, err := s.fetchTopList(ctx, item, metric, interval, limit, opts)
		if err != nil {
			return nil, nil, err
		}
		return data, s.intervalTTL(interval), nil
	})
}

func (s *StatsService) GetRealtimeTopListData(ctx context.Context, item models.TopListItemType) (*models.TopListResponse, error) {
	metrics := s.GetSupportedMetrics(item)
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCombination, item)
	}

	now := s.now()
	interval := models.DateInterval{Start: now.Add(-realtimeWindow), End: now}

	// Realtime bypasses every cache layer: always live.
	return s.fetchTopList(ctx, item, metrics[0], interval, s.defaultLimit, models.TopListOptions{})
}

func (s *StatsService) isMetricSupported(item models.TopListItemType, metric models.SiteMetric) bool {
	for _, m := range supportedMetricsByItem[item] {
		if m == metric {
			return true
		}
	}
	return false
}

func (s *StatsService) fetchTopList(ctx context.Context, item models.TopListItemType, metric models.SiteMetric, interval models.DateInterval, limit int, opts models.TopListOptions) (*models.TopListResponse, error) {
	start := time.Now()
	items, err := s.fetchTopListItems(ctx, item, interval, limit, opts)
	s.metrics.IncGatewayFetches(familyTopList)
	s.metrics.ObserveGatewayFetchDuration(familyTopList, time.Since(start))

	if err != nil {
		// A workaround for a backend quirk where summarize requests
		// return a null summary when the entire requested range is
		// before the site creation date.
		if errors.Is(err, gateway.ErrEmptySummary) {
			return &models.TopListResponse{Items: []models.TopListItem{}}, nil
		}
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.IsFeatureGated() {
			return nil, &FeatureGatedError{Item: item, Message: apiErr.Message}
		}
		return nil, err
	}

	models.SortTopListItems(items, metric, s.collator)
	return &models.TopListResponse{Items: items}, nil
}

func (s *StatsService) fetchTopListItems(ctx context.Context, item models.TopListItemType, interval models.DateInterval, limit int, opts models.TopListOptions) ([]models.TopListItem, error) {
	normalized := s.normalizer.NormalizeInterval(interval)

	request := func(endpoint string, params map[string]string) (*gateway.RawItemList, error) {
		// Summarize works correctly only with the day unit.
		return s.gateway.FetchTopList(ctx, gateway.TopListRequest{
			Endpoint:  endpoint,
			Start:     normalized.Start,
			End:       normalized.End,
			Limit:     limit,
			Summarize: true,
			Params:    params,
		})
	}

	switch item {
	case models.ItemPostsAndPages:
		raw, err := request(gateway.EndpointTopPosts, map[string]string{"skip_archives": "1"})
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapPostItem), nil

	case models.ItemAuthors:
		raw, err := request(gateway.EndpointTopAuthors, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapAuthorItem), nil

	case models.ItemReferrers:
		raw, err := request(gateway.EndpointReferrers, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapReferrerItem), nil

	case models.ItemLocations:
		level := opts.LocationLevel
		if level == "" {
			level = models.LocationCities
		}
		raw, err := request(locationEndpoint(level), nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, func(r gateway.RawTopListItem) models.TopListItem {
			return mapLocationItem(r, level)
		}), nil

	case models.ItemExternalLinks:
		raw, err := request(gateway.EndpointClicks, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapExternalLinkItem), nil

	case models.ItemFileDownloads:
		raw, err := request(gateway.EndpointFileDownloads, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapFileDownloadItem), nil

	case models.ItemSearchTerms:
		raw, err := request(gateway.EndpointSearchTerms, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapSearchTermItem), nil

	case models.ItemVideos:
		raw, err := request(gateway.EndpointVideoPlays, nil)
		if err != nil {
			return nil, err
		}
		return mapItems(raw.Items, mapVideoItem), nil

	case models.ItemArchive:
		raw, err := request(gateway.EndpointArchives, nil)
		if err != nil {
			return nil, err
		}
		return mapArchiveSections(raw.Items), nil

	case models.ItemDevices:
		raw, err := s.gateway.FetchDeviceBreakdown(ctx, gateway.DeviceRequest{
			Breakdown: "device-type",
			Start:     normalized.Start,
			End:       normalized.End,
		})
		if err != nil {
			return nil, err
		}
		items := make([]models.TopListItem, 0, len(raw))
		for _, device := range raw {
			items = append(items, mapDeviceItem(device))
		}
		return items, nil

	case models.ItemUTM:
		grouping := opts.UTMGrouping
		if grouping == "" {
			grouping = models.UTMSource
		}
		raw, err := s.gateway.FetchUTM(ctx, gateway.UTMRequest{
			Grouping:   string(grouping),
			Start:      normalized.Start,
			End:        normalized.End,
			MaxResults: limit,
		})
		if err != nil {
			return nil, err
		}
		items := make([]models.TopListItem, 0, len(raw))
		for _, value := range raw {
			items = append(items, models.UTMItem{
				Value:     value.Value,
				Grouping:  grouping,
				MetricSet: models.SiteMetricSet{models.MetricViews: value.Views},
			})
		}
		return items, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCombination, item)
	}
}

func locationEndpoint(level models.LocationLevel) string {
	switch level {
	case models.LocationCountries:
		return gateway.EndpointCountryViews
	case models.LocationRegions:
		return gateway.EndpointRegionViews
	default:
		return gateway.EndpointCityViews
	}
}

func mapItems(raw []gateway.RawTopListItem, mapper func(gateway.RawTopListItem) models.TopListItem) []models.TopListItem {
	items := make([]models.TopListItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, mapper(r))
	}
	return items
}

func mapPostItem(raw gateway.RawTopListItem) models.TopListItem {
	return models.PostItem{
		Title:     raw.Name,
		PostID:    raw.ID,
		PostURL:   raw.URL,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
}

func mapAuthorItem(raw gateway.RawTopListItem) models.TopListItem {
	userID := raw.ID
	if userID == "" {
		userID = raw.Name
	}
	return models.AuthorItem{
		Name:      raw.Name,
		UserID:    userID,
		AvatarURL: raw.Icon,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
}

func mapReferrerItem(raw gateway.RawTopListItem) models.TopListItem {
	item := models.ReferrerItem{
		Name:      raw.Name,
		Domain:    hostOf(raw.URL),
		IconURL:   raw.Icon,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
	for _, child := range raw.Children {
		item.Children = append(item.Children, mapReferrerItem(child).(models.ReferrerItem))
	}
	return item
}

func mapLocationItem(raw gateway.RawTopListItem, level models.LocationLevel) models.TopListItem {
	return models.LocationItem{
		Name:        raw.Name,
		CountryCode: raw.ID,
		Level:       level,
		MetricSet:   models.SiteMetricSet{models.MetricViews: raw.Value},
	}
}

func mapExternalLinkItem(raw gateway.RawTopListItem) models.TopListItem {
	title := raw.Name
	if title == "" {
		title = raw.URL
	}
	item := models.ExternalLinkItem{
		URL:       raw.URL,
		Title:     title,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
	for _, child := range raw.Children {
		item.Children = append(item.Children, mapExternalLinkItem(child).(models.ExternalLinkItem))
	}
	return item
}

func mapFileDownloadItem(raw gateway.RawTopListItem) models.TopListItem {
	return models.FileDownloadItem{
		FileName:  path.Base(raw.Name),
		FilePath:  raw.Name,
		MetricSet: models.SiteMetricSet{models.MetricDownloads: raw.Value},
	}
}

func mapSearchTermItem(raw gateway.RawTopListItem) models.TopListItem {
	return models.SearchTermItem{
		Term:      raw.Name,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
}

func mapVideoItem(raw gateway.RawTopListItem) models.TopListItem {
	return models.VideoItem{
		Title:     raw.Name,
		PostID:    raw.ID,
		VideoURL:  raw.URL,
		MetricSet: models.SiteMetricSet{models.MetricViews: raw.Value},
	}
}

// mapDeviceItem scales the backend's fractional percentage share into
// integer percentage points.
func mapDeviceItem(raw gateway.RawDeviceItem) models.TopListItem {
	return models.DeviceItem{
		Name:      raw.Name,
		MetricSet: models.SiteMetricSet{models.MetricViews: int(math.Round(raw.Share))},
	}
}

// mapArchiveSections groups raw archive rows by section, dropping empty
// sections and totalling their views.
func mapArchiveSections(raw []gateway.RawTopListItem) []models.TopListItem {
	order := make([]string, 0)
	entries := make(map[string][]models.ArchiveEntry)
	totals := make(map[string]int)

	for _, r := range raw {
		if r.Section == "" {
			continue
		}
		if _, seen := entries[r.Section]; !seen {
			order = append(order, r.Section)
		}
		entries[r.Section] = append(entries[r.Section], models.ArchiveEntry{
			Href:  r.URL,
			Value: r.Name,
			Views: r.Value,
		})
		totals[r.Section] += r.Value
	}

	items := make([]models.TopListItem, 0, len(order))
	for _, section := range order {
		if len(entries[section]) == 0 {
			continue
		}
		items = append(items, models.ArchiveSectionItem{
			SectionName: section,
			Entries:     entries[section],
			MetricSet:   models.SiteMetricSet{models.MetricViews: totals[section]},
		})
	}
	return items
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
