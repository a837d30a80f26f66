package internal

import (
	"net/http"

	"sds/internal/controllers"
	"sds/internal/providers"
	"sds/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/site-stats", http.HandlerFunc(apiController.GetSiteStats))
	routers.Get("/wordads-stats", http.HandlerFunc(apiController.GetWordAdsStats))
	routers.Get("/toplist", http.HandlerFunc(apiController.GetTopList))
	routers.Get("/realtime-toplist", http.HandlerFunc(apiController.GetRealtimeTopList))
	routers.Get("/chart", http.HandlerFunc(apiController.GetChartData))
	routers.Get("/chart/selection", http.HandlerFunc(apiController.GetChartSelection))
	return routers
}
