package alert

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		alertType string
		want      Severity
	}{
		{"SENSOR_OFFLINE_CRITICAL", Critical},
		{"critical_temp", Critical},
		{"VALUE_TOO_HIGH", Error},
		{"HIGH_HUMIDITY", Error},
		{"READ_ERROR", Error},
		{"SENSOR_OFFLINE", Error},
		{"POWER_FAILURE", Error},
		{"LOW_BATTERY_WARNING", Warning},
		{"VALUE_TOO_LOW", Warning},
		{"value_too_low", Warning},
		{"DOOR_OPENED", Info},
		{"", Info},
	}

	for _, tt := range tests {
		t.Run(tt.alertType, func(t *testing.T) {
			got := Classify(tt.alertType)
			assert.Equal(t, tt.want, got.Popup)
			assert.Equal(t, tt.want, got.Toast)
		})
	}
}

func TestBuild_TooLow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := Build(sensor.AlertEvent{
		SensorType:   "temp",
		AlertType:    "VALUE_TOO_LOW",
		CurrentValue: 3.5,
		Message:      "Below threshold",
	}, now)

	assert.Equal(t, Warning, n.Popup.Level)
	require.NotNil(t, n.Popup.AutoClose)
	assert.Equal(t, 7000*time.Millisecond, *n.Popup.AutoClose)

	assert.Equal(t, Warning, n.Toast.Level)
	assert.Equal(t, 5000*time.Millisecond, n.Toast.Duration)
	assert.Equal(t, "temp (VALUE_TOO_LOW): 3.5. Below threshold", n.Toast.Message)

	assert.Equal(t, now, n.Popup.Timestamp, "missing timestamp is stamped")
	assert.Equal(t, "temp", n.Popup.Source)
}

func TestBuild_UrgentTiers(t *testing.T) {
	for _, alertType := range []string{"SENSOR_OFFLINE_CRITICAL", "VALUE_TOO_HIGH"} {
		t.Run(alertType, func(t *testing.T) {
			n := Build(sensor.AlertEvent{AlertType: alertType, SensorID: "sensor-1"}, time.Now())
			assert.Nil(t, n.Popup.AutoClose, "urgent popups stay until dismissed")
			assert.Equal(t, 8*time.Second, n.Toast.Duration)
			assert.Equal(t, "sensor-1", n.Popup.Source)
		})
	}
}

func TestBuild_KeepsTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := Build(sensor.AlertEvent{AlertType: "X", Timestamp: ts}, time.Now())
	assert.Equal(t, ts, n.Event.Timestamp)
	assert.Equal(t, ts, n.Popup.Timestamp)
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"Critical", Critical},
		{"warning", Warning},
		{"SUCCESS", Success},
		{"catastrophic", Info},
		{"", Info},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}
}

func TestSeverity_Normalize(t *testing.T) {
	assert.Equal(t, Error, Error.Normalize())
	assert.Equal(t, Info, Severity(42).Normalize())
	assert.Equal(t, "Info", Severity(42).String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "20", FormatValue(20))
	assert.Equal(t, "41.25", FormatValue(41.25))
	assert.Equal(t, "-3", FormatValue(-3))
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Add(Notice{Event: sensor.AlertEvent{AlertType: fmt.Sprintf("A%d", i)}})
	}

	list := h.List()
	require.Len(t, list, 3)
	assert.Equal(t, "A5", list[0].Event.AlertType)
	assert.Equal(t, "A3", list[2].Event.AlertType)
	assert.Equal(t, DefaultHistorySize, NewHistory(0).size)
}
