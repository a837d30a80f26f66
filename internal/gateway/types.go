package gateway

import (
	"context"
	"time"
)

// SeriesRequest asks for a per-granularity time series. Start and End
// are inclusive bounds already converted to the gateway's timezone
// convention by the caller.
type SeriesRequest struct {
	Start time.Time
	End   time.Time
	Unit  string
	Limit int
}

// WordAdsRequest asks for an ad-metrics series as a lookback of
// Quantity buckets ending at Date.
type WordAdsRequest struct {
	Date     time.Time
	Unit     string
	Quantity int
}

// TopListRequest asks for one top-list category. Params carries
// endpoint-specific query parameters (skip_archives, location level and
// the like). Summarize requests a single aggregate bucket for the whole
// range; it works correctly only with the day unit.
type TopListRequest struct {
	Endpoint  string
	Start     time.Time
	End       time.Time
	Limit     int
	Summarize bool
	Params    map[string]string
}

type DeviceRequest struct {
	Breakdown string
	Start     time.Time
	End       time.Time
}

type UTMRequest struct {
	Grouping   string
	Start      time.Time
	End        time.Time
	MaxResults int
}

// RawSeriesRow is one wire row of a series response, keyed by the
// envelope's field names. Values stay loosely typed until the service
// maps them into the domain model.
type RawSeriesRow struct {
	Period string
	Values map[string]float64
}

type RawSeries struct {
	Unit string
	Rows []RawSeriesRow
}

// RawTopListItem is the wire shape shared by all top-list categories;
// which fields are populated depends on the endpoint.
type RawTopListItem struct {
	ID       string
	Name     string
	URL      string
	Icon     string
	Section  string
	Value    int
	Children []RawTopListItem
}

type RawItemList struct {
	Items []RawTopListItem
}

// RawDeviceItem carries a device's share of traffic as the percentage
// reported by the backend.
type RawDeviceItem struct {
	Name  string
	Share float64
}

type RawUTMItem struct {
	Value string
	Views int
}

// Interface is the remote metrics gateway consumed by the stats
// service. All calls are asynchronous network I/O and may fail with a
// transport error; results are raw wire-shaped data requiring mapping.
type Interface interface {
	FetchSeries(ctx context.Context, req SeriesRequest) (*RawSeries, error)
	FetchWordAdsSeries(ctx context.Context, req WordAdsRequest) (*RawSeries, error)
	FetchTopList(ctx context.Context, req TopListRequest) (*RawItemList, error)
	FetchDeviceBreakdown(ctx context.Context, req DeviceRequest) ([]RawDeviceItem, error)
	FetchUTM(ctx context.Context, req UTMRequest) ([]RawUTMItem, error)
}

// Endpoint paths per top-list category.
const (
	EndpointTopPosts      = "top-posts"
	EndpointTopAuthors    = "top-authors"
	EndpointReferrers     = "referrers"
	EndpointCountryViews  = "country-views"
	EndpointRegionViews   = "region-views"
	EndpointCityViews     = "city-views"
	EndpointClicks        = "clicks"
	EndpointFileDownloads = "file-downloads"
	EndpointSearchTerms   = "search-terms"
	EndpointVideoPlays    = "video-plays"
	EndpointArchives      = "archives"
)
