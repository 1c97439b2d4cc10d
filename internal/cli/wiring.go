package cli

import (
	"github.com/rileyhilliard/sensorwatch/internal/api"
	"github.com/rileyhilliard/sensorwatch/internal/config"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// loadConfig finds, loads and validates the config. Defaults are used when
// no file exists.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// commandLogger picks the log sink. A configured log file always wins;
// otherwise the TUI discards logs and line-mode commands log to stderr.
func commandLogger(cfg *config.Config, tui bool, prefix string) logger.Logger {
	switch {
	case cfg.Log.File != "":
		return logger.NewFileLogger(cfg.Log.File, prefix)
	case tui:
		return logger.Noop()
	default:
		return logger.NewEnvLogger(prefix)
	}
}

func newAPIClient(cfg *config.Config, log logger.Logger) *api.Client {
	return api.New(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.API.Timeout}, nil, log)
}

func newStream(cfg *config.Config, log logger.Logger) (*stream.Machine, error) {
	tr, err := stream.NewMQTTTransport(stream.MQTTConfig{
		URL:       cfg.StreamURL,
		ClientID:  cfg.ClientID,
		KeepAlive: cfg.Stream.KeepAlive,
	}, log)
	if err != nil {
		return nil, err
	}

	sc := stream.DefaultConfig()
	sc.ReadingsTopic = cfg.Topics.Readings
	sc.AlertsTopic = cfg.Topics.Alerts
	sc.ReconnectDelay = cfg.Stream.ReconnectDelay
	sc.ConnectTimeout = cfg.Stream.ConnectTimeout
	return stream.New(tr, sc, log), nil
}

func viewConfig(cfg *config.Config) view.Config {
	return view.Config{
		GridPageSize:  cfg.View.GridPageSize,
		LinesPageSize: cfg.View.LinesPageSize,
		MaxPoints:     cfg.View.MaxPointsPerSeries,
	}
}

// newSession wires a dashboard session against the configured broker and API.
func newSession(cfg *config.Config, f sensor.Filter, d dashboard.Dispatcher, log logger.Logger) (*dashboard.Session, error) {
	machine, err := newStream(cfg, log)
	if err != nil {
		return nil, err
	}
	return dashboard.New(dashboard.Options{
		Stream:     machine,
		Fetcher:    newAPIClient(cfg, log),
		Dispatcher: d,
		View:       viewConfig(cfg),
		Filter:     f,
		Recent:     cfg.View.RecentReadings,
		AlertLimit: cfg.Alerts.HistorySize,
		Logger:     log,
	}), nil
}
