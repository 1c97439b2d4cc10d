package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
)

// MinDelay is the smallest accepted reconnect delay. Anything lower hammers
// the broker when it is down.
const MinDelay = 100 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensorwatch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sensorwatch or lower the version field")
	}

	if err := validateAPIURL(cfg.APIURL); err != nil {
		return err
	}

	if _, err := stream.ParseBrokerURL(cfg.StreamURL); err != nil {
		return err
	}

	if cfg.Topics.Readings == "" || cfg.Topics.Alerts == "" {
		return errors.New(errors.ErrConfig,
			"Both topics.readings and topics.alerts must be set",
			"Defaults are 'sensors/data' and 'alerts'")
	}

	if err := validateStream(cfg.Stream); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'stream' section in your .sensorwatch.yaml.")
	}

	if err := validateView(cfg.View); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'view' section in your .sensorwatch.yaml.")
	}

	if cfg.Alerts.HistorySize <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("alerts.history_size must be positive, got %d", cfg.Alerts.HistorySize),
			"The default keeps the last 20 alerts")
	}

	if cfg.API.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.timeout must be positive, got %s", cfg.API.Timeout),
			"Try something like '15s'")
	}

	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"api_url is not a valid URL: "+raw,
			"Use something like http://localhost:8080/api")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api_url must be http or https, got %q", u.Scheme),
			"Use something like http://localhost:8080/api")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			"api_url has no host: "+raw,
			"Use something like http://localhost:8080/api")
	}
	return nil
}

func validateStream(s StreamConfig) error {
	if s.ReconnectDelay < MinDelay {
		return fmt.Errorf("stream.reconnect_delay must be at least %s, got %s", MinDelay, s.ReconnectDelay)
	}
	if s.KeepAlive < time.Second {
		return fmt.Errorf("stream.keep_alive must be at least 1s, got %s", s.KeepAlive)
	}
	if s.ConnectTimeout < MinDelay {
		return fmt.Errorf("stream.connect_timeout must be at least %s, got %s", MinDelay, s.ConnectTimeout)
	}
	return nil
}

func validateView(v ViewConfig) error {
	if v.GridPageSize <= 0 {
		return fmt.Errorf("view.grid_page_size must be positive, got %d", v.GridPageSize)
	}
	if v.LinesPageSize <= 0 {
		return fmt.Errorf("view.lines_page_size must be positive, got %d", v.LinesPageSize)
	}
	if v.MaxPointsPerSeries < 0 {
		return fmt.Errorf("view.max_points_per_series can't be negative (use 0 for unbounded), got %d", v.MaxPointsPerSeries)
	}
	if v.RecentReadings <= 0 {
		return fmt.Errorf("view.recent_readings must be positive, got %d", v.RecentReadings)
	}
	return nil
}
