package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)
	assert.Equal(t, "tcp://localhost:1883", cfg.StreamURL)
	assert.Equal(t, "sensors/data", cfg.Topics.Readings)
	assert.Equal(t, "alerts", cfg.Topics.Alerts)
	assert.Equal(t, 5*time.Second, cfg.Stream.ReconnectDelay)
	assert.Equal(t, 4*time.Second, cfg.Stream.KeepAlive)
	assert.Equal(t, 3, cfg.View.GridPageSize)
	assert.Equal(t, 5, cfg.View.LinesPageSize)
	assert.Equal(t, 20, cfg.Alerts.HistorySize)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
api_url: https://sensors.example.com/api
stream_url: wss://sensors.example.com/mqtt
topics:
  readings: farm/+/data
stream:
  reconnect_delay: 2s
view:
  grid_page_size: 4
  max_points_per_series: 0
log:
  file: ~/sensorwatch.log
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://sensors.example.com/api", cfg.APIURL)
	assert.Equal(t, "wss://sensors.example.com/mqtt", cfg.StreamURL)
	assert.Equal(t, "farm/+/data", cfg.Topics.Readings)
	assert.Equal(t, "alerts", cfg.Topics.Alerts, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Stream.ReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.Stream.ConnectTimeout)
	assert.Equal(t, 4, cfg.View.GridPageSize)
	assert.Equal(t, 0, cfg.View.MaxPointsPerSeries)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sensorwatch.log"), cfg.Log.File)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SENSORWATCH_STREAM_URL", "tcp://broker:1884")
	t.Setenv("SENSORWATCH_VIEW_GRID_PAGE_SIZE", "6")
	t.Setenv("SENSORWATCH_STREAM_RECONNECT_DELAY", "750ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1884", cfg.StreamURL)
	assert.Equal(t, 6, cfg.View.GridPageSize)
	assert.Equal(t, 750*time.Millisecond, cfg.Stream.ReconnectDelay)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/.sensorwatch.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

		got, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Specified config file not found")
	})

	t.Run("parent directory stops at git root", func(t *testing.T) {
		root := t.TempDir()
		repo := filepath.Join(root, "repo")
		nested := filepath.Join(repo, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(repo, ConfigFileName), []byte("version: 1\n"), 0644))
		// Above the git root, must not be picked up from inside the repo.
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 1\n"), 0644))

		t.Chdir(nested)
		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(repo, ConfigFileName), resolve(t, got))
	})
}

func resolve(t *testing.T, p string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(filepath.Dir(p))
	require.NoError(t, err)
	return filepath.Join(dir, filepath.Base(p))
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Chdir(dir)

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().StreamURL, cfg.StreamURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"bad api scheme", func(c *Config) { c.APIURL = "ftp://x/api" }, "http or https"},
		{"api without host", func(c *Config) { c.APIURL = "http:///api" }, "no host"},
		{"bad stream scheme", func(c *Config) { c.StreamURL = "http://localhost:8085/ws" }, ""},
		{"websocket stream", func(c *Config) { c.StreamURL = "ws://localhost:8080/mqtt" }, ""},
		{"empty topic", func(c *Config) { c.Topics.Alerts = "" }, "topics.alerts"},
		{"tiny reconnect delay", func(c *Config) { c.Stream.ReconnectDelay = 10 * time.Millisecond }, "reconnect_delay"},
		{"short keep alive", func(c *Config) { c.Stream.KeepAlive = 500 * time.Millisecond }, "keep_alive"},
		{"zero grid page", func(c *Config) { c.View.GridPageSize = 0 }, "grid_page_size"},
		{"negative lines page", func(c *Config) { c.View.LinesPageSize = -1 }, "lines_page_size"},
		{"negative max points", func(c *Config) { c.View.MaxPointsPerSeries = -5 }, "max_points_per_series"},
		{"zero recent", func(c *Config) { c.View.RecentReadings = 0 }, "recent_readings"},
		{"zero history", func(c *Config) { c.Alerts.HistorySize = 0 }, "history_size"},
		{"zero api timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)

			switch {
			case tt.name == "bad stream scheme":
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			case tt.wantErr == "":
				assert.NoError(t, err)
			default:
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("USER", "grower")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "/var/log/grower.log", Expand("/var/log/${USER}.log"))
	assert.Equal(t, home+"/logs", Expand("${HOME}/logs"))
	assert.Equal(t, "", Expand(""))
	assert.Equal(t, filepath.Join(home, "x"), ExpandTilde("~/x"))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}
