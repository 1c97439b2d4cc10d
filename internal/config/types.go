package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .sensorwatch.yaml configuration file.
type Config struct {
	Version   int          `yaml:"version" mapstructure:"version"`
	APIURL    string       `yaml:"api_url" mapstructure:"api_url"`
	StreamURL string       `yaml:"stream_url" mapstructure:"stream_url"`
	ClientID  string       `yaml:"client_id,omitempty" mapstructure:"client_id"`
	Topics    TopicsConfig `yaml:"topics" mapstructure:"topics"`
	Stream    StreamConfig `yaml:"stream" mapstructure:"stream"`
	View      ViewConfig   `yaml:"view" mapstructure:"view"`
	Alerts    AlertsConfig `yaml:"alerts" mapstructure:"alerts"`
	API       APIConfig    `yaml:"api" mapstructure:"api"`
	Log       LogConfig    `yaml:"log" mapstructure:"log"`
}

// TopicsConfig names the broker topics carrying readings and alerts.
type TopicsConfig struct {
	Readings string `yaml:"readings" mapstructure:"readings"`
	Alerts   string `yaml:"alerts" mapstructure:"alerts"`
}

// StreamConfig controls the live connection.
type StreamConfig struct {
	// ReconnectDelay is the fixed wait between connection attempts.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`

	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`

	// ConnectTimeout bounds a single dial plus subscribe.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// ViewConfig controls chart partitioning.
type ViewConfig struct {
	// GridPageSize is how many location charts show per page when no filter is pinned.
	GridPageSize int `yaml:"grid_page_size" mapstructure:"grid_page_size"`

	// LinesPageSize is how many location lines share one chart when a sensor type is pinned.
	LinesPageSize int `yaml:"lines_page_size" mapstructure:"lines_page_size"`

	// MaxPointsPerSeries keeps only the newest points of each series. 0 keeps all.
	MaxPointsPerSeries int `yaml:"max_points_per_series" mapstructure:"max_points_per_series"`

	// RecentReadings is the length of the recent readings list.
	RecentReadings int `yaml:"recent_readings" mapstructure:"recent_readings"`
}

// AlertsConfig controls the alert history.
type AlertsConfig struct {
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`
}

// APIConfig controls the historical data client.
type APIConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig controls where logs go. An empty File logs to stderr, except
// under the TUI where logs are discarded.
type LogConfig struct {
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentConfigVersion,
		APIURL:    "http://localhost:8080/api",
		StreamURL: "tcp://localhost:1883",
		Topics: TopicsConfig{
			Readings: "sensors/data",
			Alerts:   "alerts",
		},
		Stream: StreamConfig{
			ReconnectDelay: 5 * time.Second,
			KeepAlive:      4 * time.Second,
			ConnectTimeout: 10 * time.Second,
		},
		View: ViewConfig{
			GridPageSize:       3,
			LinesPageSize:      5,
			MaxPointsPerSeries: 120,
			RecentReadings:     20,
		},
		Alerts: AlertsConfig{HistorySize: 20},
		API:    APIConfig{Timeout: 15 * time.Second},
	}
}
