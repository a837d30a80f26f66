package providers

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"sds/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeGateway
)

type Logger interface {
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Errorf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

// LogProvider routes log records into per-type files: application
// events, HTTP access, and remote gateway traffic.
type LogProvider struct {
	app     zerolog.Logger
	access  zerolog.Logger
	gateway zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	provider := &LogProvider{}
	mode := fs.FileMode(conf.Logger.Mode)

	open := func(name string) (io.Writer, error) {
		file, err := os.OpenFile(filepath.Join(conf.Logger.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
		if err != nil {
			return nil, err
		}
		provider.files = append(provider.files, file)
		if conf.Debug {
			return io.MultiWriter(file, zerolog.ConsoleWriter{Out: os.Stderr}), nil
		}
		return file, nil
	}

	appWriter, err := open("app.log")
	if err != nil {
		return nil, err
	}
	accessWriter, err := open("access.log")
	if err != nil {
		provider.Close()
		return nil, err
	}
	gatewayWriter, err := open("gateway.log")
	if err != nil {
		provider.Close()
		return nil, err
	}

	provider.app = zerolog.New(appWriter).Level(level).With().Timestamp().Str("type", "app").Logger()
	provider.access = zerolog.New(accessWriter).Level(level).With().Timestamp().Str("type", "access").Logger()
	provider.gateway = zerolog.New(gatewayWriter).Level(level).With().Timestamp().Str("type", "gateway").Logger()

	return provider, nil
}

func (l *LogProvider) route(t TypeEnum) *zerolog.Logger {
	switch t {
	case TypeGet, TypePost:
		return &l.access
	case TypeGateway:
		return &l.gateway
	default:
		return &l.app
	}
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.route(t).Debug().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.route(t).Info().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.route(t).Warn().Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.route(t).Error().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.route(t).Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	for _, file := range l.files {
		_ = file.Close()
	}
	l.files = nil
}
