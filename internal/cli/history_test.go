package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/api"
	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

type stubFetcher struct {
	readings []sensor.Reading
	tags     sensor.Tags
	readErr  error
	tagErr   error
	filters  []sensor.Filter
}

func (s *stubFetcher) Readings(_ context.Context, f sensor.Filter) ([]sensor.Reading, error) {
	s.filters = append(s.filters, f)
	return s.readings, s.readErr
}

func (s *stubFetcher) Tags(context.Context) (sensor.Tags, error) {
	return s.tags, s.tagErr
}

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleFetcher() *stubFetcher {
	return &stubFetcher{
		tags: sensor.Tags{SensorTypes: []string{"temperature", "humidity"}, Locations: []string{"kitchen", "garage"}},
		readings: []sensor.Reading{
			{SensorID: "k1", SensorType: "temperature", Location: "kitchen", Value: 21.5, Timestamp: t0},
			{SensorID: "k1", SensorType: "temperature", Location: "kitchen", Value: 22, Timestamp: t0.Add(time.Minute)},
			{SensorID: "k2", SensorType: "humidity", Location: "kitchen", Value: 40, Timestamp: t0},
			{SensorID: "g1", SensorType: "temperature", Location: "garage", Value: 12, Timestamp: t0},
		},
	}
}

func TestHistoryCommand_Summary(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	err := historyCommand(context.Background(), &buf, f, historyOptions{View: view.DefaultConfig()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "location grid")
	assert.Contains(t, out, "kitchen")
	assert.Contains(t, out, "garage")
	assert.Contains(t, out, "(2 points)")
	assert.Contains(t, out, "22")
}

func TestHistoryCommand_PassesFilter(t *testing.T) {
	f := sampleFetcher()
	filter := sensor.Filter{SensorType: "temperature", Start: t0}
	var buf bytes.Buffer

	require.NoError(t, historyCommand(context.Background(), &buf, f, historyOptions{Filter: filter, View: view.DefaultConfig()}))
	require.Len(t, f.filters, 1)
	assert.Equal(t, filter, f.filters[0])
	assert.Contains(t, buf.String(), "locations for type")
	assert.NotContains(t, buf.String(), "humidity")
}

func TestHistoryCommand_JSON(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	opts := historyOptions{Filter: sensor.Filter{Location: "garage"}, View: view.DefaultConfig(), JSON: true}
	require.NoError(t, historyCommand(context.Background(), &buf, f, opts))

	var env struct {
		Success bool          `json:"success"`
		Data    HistoryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Data.Count)
	assert.Equal(t, "types for location", env.Data.Mode)
	require.Len(t, env.Data.Readings, 1)
	assert.Equal(t, "garage", env.Data.Readings[0].Location)
	assert.Equal(t, []string{"kitchen", "garage"}, env.Data.Tags.Locations)
}

func TestHistoryCommand_Table(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	require.NoError(t, historyCommand(context.Background(), &buf, f, historyOptions{View: view.DefaultConfig(), Table: true}))
	out := buf.String()
	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, "21.5")
}

func TestHistoryCommand_Chart(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	opts := historyOptions{Filter: sensor.Filter{SensorType: "temperature", Location: "kitchen"}, View: view.DefaultConfig(), Chart: true, Width: 80}
	require.NoError(t, historyCommand(context.Background(), &buf, f, opts))
	assert.Contains(t, buf.String(), "┤", "asciigraph axis")
}

func TestHistoryCommand_Paging(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	cfg := view.Config{GridPageSize: 1, LinesPageSize: 5}
	require.NoError(t, historyCommand(context.Background(), &buf, f, historyOptions{View: cfg, Page: 2}))
	out := buf.String()
	assert.Contains(t, out, "page 2 of 2")
}

func TestHistoryCommand_Empty(t *testing.T) {
	f := sampleFetcher()
	f.readings = nil
	var buf bytes.Buffer

	require.NoError(t, historyCommand(context.Background(), &buf, f, historyOptions{View: view.DefaultConfig()}))
	assert.Contains(t, buf.String(), "No readings match all readings")
}

func TestHistoryCommand_FetchError(t *testing.T) {
	f := sampleFetcher()
	f.readErr = &api.FetchError{StatusCode: 503, Status: "Service Unavailable"}
	var buf bytes.Buffer

	err := historyCommand(context.Background(), &buf, f, historyOptions{View: view.DefaultConfig()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Contains(t, err.Error(), "Error 503: Service Unavailable")
}

func TestTagsCommand(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	require.NoError(t, tagsCommand(context.Background(), &buf, f, false))
	out := buf.String()
	assert.Contains(t, out, "Sensor types (2)")
	assert.Contains(t, out, "  temperature\n  humidity")
	assert.Contains(t, out, "Locations (2)")
}

func TestTagsCommand_JSON(t *testing.T) {
	f := sampleFetcher()
	var buf bytes.Buffer

	require.NoError(t, tagsCommand(context.Background(), &buf, f, true))
	var env struct {
		Data sensor.Tags `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, f.tags, env.Data)
}

func TestTagsCommand_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tagsCommand(context.Background(), &buf, &stubFetcher{}, false))
	assert.Contains(t, buf.String(), "none")
}
