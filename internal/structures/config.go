package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type GatewayConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Token   string        `yaml:"token"`
	SiteID  int64         `yaml:"siteId" validate:"required|uint|min:1"`
	Timeout time.Duration `yaml:"timeout"`
}

type StatsConfig struct {
	// SiteTimezone is the IANA name of the site's reporting timezone,
	// e.g. "America/New_York".
	SiteTimezone     string        `yaml:"siteTimezone" validate:"required"`
	CurrentPeriodTTL time.Duration `yaml:"currentPeriodTTL"`
	DefaultLimit     int           `yaml:"defaultLimit"`
	Locale           string        `yaml:"locale"`
	SampleInterval   time.Duration `yaml:"sampleInterval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Stats     StatsConfig   `yaml:"stats"`
	Gateway   GatewayConfig `yaml:"gateway"`
	WebServer Server        `yaml:"webServer"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
