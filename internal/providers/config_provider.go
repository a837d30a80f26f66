package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"sds/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SDS_LOG_LEVEL")
	viper.BindEnv("gateway.baseUrl", "SDS_GATEWAY_BASE_URL")
	viper.BindEnv("gateway.token", "SDS_GATEWAY_TOKEN")
	viper.BindEnv("gateway.siteId", "SDS_SITE_ID")
	viper.BindEnv("stats.siteTimezone", "SDS_SITE_TIMEZONE")
	viper.BindEnv("stats.currentPeriodTTL", "SDS_CURRENT_PERIOD_TTL")
	viper.BindEnv("cache.enabled", "SDS_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SDS_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.Stats.CurrentPeriodTTL <= 0 {
		conf.Stats.CurrentPeriodTTL = 30 * time.Second
	}
	if conf.Stats.DefaultLimit <= 0 {
		conf.Stats.DefaultLimit = 10
	}
	if conf.Stats.SampleInterval <= 0 {
		conf.Stats.SampleInterval = time.Minute
	}

	conf.AppName = "StatsDataService"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
