package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"sds/internal/models"
)

type ChartServiceInterface interface {
	GetChartData(ctx context.Context, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity) (*models.ChartData, error)
	SelectDataPoints(probe time.Time, data *models.ChartData) models.SelectedDataPoints
}

// ChartService assembles the comparison view-model on top of the stats
// service: the requested interval plus the preceding interval of equal
// length, with the previous series re-dated onto the current axis.
type ChartService struct {
	stats StatsServiceInterface
}

func NewChartService(stats StatsServiceInterface) ChartServiceInterface {
	return &ChartService{stats: stats}
}

func (c *ChartService) GetChartData(ctx context.Context, metric models.SiteMetric, interval models.DateInterval, granularity models.Granularity) (*models.ChartData, error) {
	preceding := interval.Preceding()

	var current, previous *models.SiteMetricsResponse
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		current, err = c.stats.GetSiteStats(groupCtx, interval, granularity)
		return err
	})
	group.Go(func() error {
		var err error
		previous, err = c.stats.GetSiteStats(groupCtx, preceding, granularity)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	offset := interval.Start.Sub(preceding.Start)
	mapped := models.MapPreviousPoints(previous.Series[metric], offset, interval)

	return models.NewChartData(
		metric,
		granularity,
		current.Total[metric],
		current.Series[metric],
		previous.Total[metric],
		previous.Series[metric],
		mapped,
		offset,
	), nil
}

func (c *ChartService) SelectDataPoints(probe time.Time, data *models.ChartData) models.SelectedDataPoints {
	return models.SelectDataPoints(probe, data, c.stats.SiteTimezone())
}
