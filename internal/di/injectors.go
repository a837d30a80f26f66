//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"sds/internal"
	"sds/internal/controllers"
	"sds/internal/gateway"
	"sds/internal/monitor"
	"sds/internal/providers"
	"sds/internal/services"
	"sds/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		gateway.NewRestClient,
		services.NewTimeZoneNormalizer,
		services.NewStatsService,
		services.NewChartService,
		monitor.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
