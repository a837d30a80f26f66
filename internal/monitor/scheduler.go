package monitor

import (
	"github.com/roylee0704/gron"
	"sds/internal/providers"
	"sds/internal/services"
	"sds/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
}

// Scheduler periodically samples the per-family cached entry counts
// into the metrics gauges.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.StatsServiceInterface
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Stats.SampleInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		for family, count := range s.service.CachedEntryCounts() {
			s.metrics.SetCachedEntries(family, count)
		}
		s.logger.Debugf(providers.TypeApp, "Sampled cache entry counts")
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Cache monitor started, sampling every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.StatsServiceInterface, metrics providers.MetricsProviderInterface) SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		metrics: metrics,
	}
}
