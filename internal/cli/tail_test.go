package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

func newTestPrinter() (*tailPrinter, *bytes.Buffer) {
	var buf bytes.Buffer
	return newTailPrinter(&buf, func() time.Time { return t0 }), &buf
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	buf.Reset()
	return out
}

func TestTailPrinter_Lifecycle(t *testing.T) {
	p, buf := newTestPrinter()

	p.Frame(dashboard.View{State: stream.Disconnected, Loading: true})
	got := lines(buf)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "stream disconnected")
	assert.Contains(t, got[1], "loading history for all readings")

	p.Frame(dashboard.View{State: stream.Connected, Loading: true})
	got = lines(buf)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "stream connected")

	history := dashboard.View{
		State:    stream.Connected,
		Matching: 3,
		Snapshot: view.Snapshot{Charts: []view.Chart{{Title: "kitchen", Series: []view.Series{{Label: "No data for kitchen", Placeholder: true}}}}},
	}
	p.Frame(history)
	out := buf.String()
	buf.Reset()
	assert.Contains(t, out, "loaded history: 3 matching readings")
	assert.Contains(t, out, "No data for kitchen")

	fresh := []sensor.Reading{
		{SensorType: "temperature", Location: "kitchen", Value: 23, Timestamp: t0.Add(2 * time.Second)},
		{SensorType: "humidity", Location: "kitchen", Value: 41, Timestamp: t0.Add(time.Second)},
	}
	p.Frame(dashboard.View{State: stream.Connected, Matching: 5, Recent: fresh})
	got = lines(buf)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "humidity", "oldest first")
	assert.Contains(t, got[1], "temperature")
	assert.Contains(t, got[1], "23")

	p.Frame(dashboard.View{State: stream.Connected, Matching: 5, Recent: fresh})
	assert.Empty(t, buf.String(), "nothing changed")
}

func TestTailPrinter_FetchErrorPrintedOnce(t *testing.T) {
	p, buf := newTestPrinter()

	p.Frame(dashboard.View{State: stream.Connected, Loading: true})
	buf.Reset()

	v := dashboard.View{State: stream.Connected, Err: "Error 500: Internal Server Error"}
	p.Frame(v)
	assert.Contains(t, buf.String(), "Error 500: Internal Server Error")
	buf.Reset()

	p.Frame(v)
	assert.Empty(t, buf.String())
}

func TestTailPrinter_Dispatch(t *testing.T) {
	p, buf := newTestPrinter()

	n := alert.Build(sensor.AlertEvent{
		SensorType:   "temperature",
		CurrentValue: 41.5,
		AlertType:    "VALUE_TOO_HIGH",
		Message:      "too hot",
	}, t0)
	p.Dispatch(n)

	out := buf.String()
	assert.Contains(t, out, "10:00:00")
	assert.Contains(t, out, "ALERT")
	assert.Contains(t, out, "temperature (VALUE_TOO_HIGH): 41.5. too hot")
}

func TestTailPrinter_MinLevel(t *testing.T) {
	tests := []struct {
		minLevel  string
		alertType string
		printed   bool
	}{
		{"info", "VALUE_TOO_LOW", true},
		{"error", "VALUE_TOO_LOW", false},
		{"error", "VALUE_TOO_HIGH", true},
		{"critical", "VALUE_TOO_HIGH", false},
		{"CRITICAL", "SENSOR_OFFLINE_CRITICAL", true},
		{"bogus", "SOMETHING", true},
	}

	for _, tt := range tests {
		t.Run(tt.minLevel+"/"+tt.alertType, func(t *testing.T) {
			p, buf := newTestPrinter()
			p.minLevel = alert.ParseSeverity(tt.minLevel)

			p.Dispatch(alert.Build(sensor.AlertEvent{SensorType: "temp", AlertType: tt.alertType}, t0))

			if tt.printed {
				assert.Contains(t, buf.String(), "ALERT")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
