package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/cast"
	"sds/internal/providers"
	"sds/internal/structures"
)

const (
	defaultTimeout = 15 * time.Second
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// RestClient talks to the remote analytics API over HTTP. Responses are
// served compressed; the gzhttp transport handles decompression.
type RestClient struct {
	baseURL string
	siteID  int64
	token   string
	client  *http.Client
	logger  providers.Logger
}

func NewRestClient(conf *structures.Config, logger providers.Logger) Interface {
	timeout := conf.Gateway.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RestClient{
		baseURL: conf.Gateway.BaseURL,
		siteID:  conf.Gateway.SiteID,
		token:   conf.Gateway.Token,
		client: &http.Client{
			Timeout:   timeout,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		logger: logger,
	}
}

type wireSeries struct {
	Unit   string   `json:"unit"`
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

type wireTopListItem struct {
	ID       any               `json:"id"`
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Icon     string            `json:"icon"`
	Section  string            `json:"section"`
	Value    any               `json:"value"`
	Children []wireTopListItem `json:"children"`
}

type wireTopList struct {
	Summary *struct {
		Items []wireTopListItem `json:"items"`
	} `json:"summary"`
}

type wireDevices struct {
	Devices []struct {
		Name  string `json:"name"`
		Share any    `json:"share"`
	} `json:"devices"`
}

type wireUTM struct {
	Values []struct {
		Value string `json:"value"`
		Views any    `json:"views"`
	} `json:"values"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *RestClient) FetchSeries(ctx context.Context, req SeriesRequest) (*RawSeries, error) {
	query := url.Values{}
	query.Set("unit", req.Unit)
	query.Set("startDate", formatDate(req.Start, req.Unit))
	query.Set("endDate", formatDate(req.End, req.Unit))
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	var envelope wireSeries
	if err := c.get(ctx, "stats/visits", query, &envelope); err != nil {
		return nil, err
	}
	return mapSeriesEnvelope(&envelope)
}

func (c *RestClient) FetchWordAdsSeries(ctx context.Context, req WordAdsRequest) (*RawSeries, error) {
	query := url.Values{}
	query.Set("unit", req.Unit)
	query.Set("date", req.Date.Format(dateFormat))
	query.Set("quantity", strconv.Itoa(req.Quantity))

	var envelope wireSeries
	if err := c.get(ctx, "wordads/stats", query, &envelope); err != nil {
		return nil, err
	}
	return mapSeriesEnvelope(&envelope)
}

func (c *RestClient) FetchTopList(ctx context.Context, req TopListRequest) (*RawItemList, error) {
	query := url.Values{}
	query.Set("startDate", formatDate(req.Start, "day"))
	query.Set("endDate", formatDate(req.End, "day"))
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Summarize {
		query.Set("summarize", "true")
	}
	for k, v := range req.Params {
		query.Set(k, v)
	}

	var envelope wireTopList
	if err := c.get(ctx, "stats/"+req.Endpoint, query, &envelope); err != nil {
		return nil, err
	}
	if envelope.Summary == nil {
		return nil, ErrEmptySummary
	}

	list := &RawItemList{Items: make([]RawTopListItem, 0, len(envelope.Summary.Items))}
	for _, item := range envelope.Summary.Items {
		list.Items = append(list.Items, mapTopListItem(item))
	}
	return list, nil
}

func (c *RestClient) FetchDeviceBreakdown(ctx context.Context, req DeviceRequest) ([]RawDeviceItem, error) {
	query := url.Values{}
	query.Set("breakdown", req.Breakdown)
	query.Set("startDate", formatDate(req.Start, "day"))
	query.Set("endDate", formatDate(req.End, "day"))

	var envelope wireDevices
	if err := c.get(ctx, "stats/devices", query, &envelope); err != nil {
		return nil, err
	}
	items := make([]RawDeviceItem, 0, len(envelope.Devices))
	for _, d := range envelope.Devices {
		items = append(items, RawDeviceItem{Name: d.Name, Share: cast.ToFloat64(d.Share)})
	}
	return items, nil
}

func (c *RestClient) FetchUTM(ctx context.Context, req UTMRequest) ([]RawUTMItem, error) {
	query := url.Values{}
	query.Set("grouping", req.Grouping)
	query.Set("startDate", formatDate(req.Start, "day"))
	query.Set("endDate", formatDate(req.End, "day"))
	if req.MaxResults > 0 {
		query.Set("max", strconv.Itoa(req.MaxResults))
	}

	var envelope wireUTM
	if err := c.get(ctx, "stats/utm", query, &envelope); err != nil {
		return nil, err
	}
	items := make([]RawUTMItem, 0, len(envelope.Values))
	for _, v := range envelope.Values {
		items = append(items, RawUTMItem{Value: v.Value, Views: cast.ToInt(v.Views)})
	}
	return items, nil
}

func (c *RestClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/sites/%d/%s?%s", c.baseURL, c.siteID, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debugf(providers.TypeGateway, "GET %s -> %d in %s", path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed wireError
		if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil {
			apiErr.Code = parsed.Error
			apiErr.Message = parsed.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func mapSeriesEnvelope(envelope *wireSeries) (*RawSeries, error) {
	periodIdx := -1
	for i, f := range envelope.Fields {
		if f == "period" {
			periodIdx = i
			break
		}
	}
	if periodIdx < 0 {
		return nil, fmt.Errorf("gateway: series envelope missing period field")
	}

	series := &RawSeries{Unit: envelope.Unit, Rows: make([]RawSeriesRow, 0, len(envelope.Data))}
	for _, row := range envelope.Data {
		if periodIdx >= len(row) {
			continue
		}
		mapped := RawSeriesRow{
			Period: cast.ToString(row[periodIdx]),
			Values: make(map[string]float64, len(envelope.Fields)-1),
		}
		for i, field := range envelope.Fields {
			if i == periodIdx || i >= len(row) || row[i] == nil {
				continue
			}
			mapped.Values[field] = cast.ToFloat64(row[i])
		}
		series.Rows = append(series.Rows, mapped)
	}
	return series, nil
}

func mapTopListItem(item wireTopListItem) RawTopListItem {
	mapped := RawTopListItem{
		ID:      cast.ToString(item.ID),
		Name:    item.Name,
		URL:     item.URL,
		Icon:    item.Icon,
		Section: item.Section,
		Value:   cast.ToInt(item.Value),
	}
	for _, child := range item.Children {
		mapped.Children = append(mapped.Children, mapTopListItem(child))
	}
	return mapped
}

func formatDate(t time.Time, unit string) string {
	if unit == "hour" {
		return t.Format(dateTimeFormat)
	}
	return t.Format(dateFormat)
}
