package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
)

// ParseTime parses an ISO-8601 timestamp.
func ParseTime(s string) (time.Time, error) {
	return iso8601.ParseString(s)
}

// wireTime accepts either an ISO-8601 string or epoch milliseconds.
// Live topics send strings; the history API sends numbers.
type wireTime struct {
	time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		t, err := ParseTime(s)
		if err != nil {
			return err
		}
		w.Time = t
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is neither ISO-8601 nor epoch millis", data)
	}
	w.Time = time.UnixMilli(int64(ms))
	return nil
}

type wireReading struct {
	SensorID   string   `json:"sensorId,omitempty"`
	SensorType string   `json:"sensorType"`
	Location   string   `json:"location"`
	Value      float64  `json:"value"`
	Timestamp  wireTime `json:"timestamp"`
}

type wireAlert struct {
	SensorType      string   `json:"sensorType"`
	CurrentValue    float64  `json:"currentValue"`
	AlertType       string   `json:"alertType"`
	Message         string   `json:"message"`
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	Timestamp       wireTime `json:"timestamp"`
	SensorID        string   `json:"sensorId,omitempty"`
}

// UnmarshalJSON decodes the camelCase wire form.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var w wireReading
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Reading{
		SensorID:   w.SensorID,
		SensorType: w.SensorType,
		Location:   w.Location,
		Value:      w.Value,
		Timestamp:  w.Timestamp.Time,
	}
	return nil
}

// MarshalJSON encodes the camelCase wire form with an RFC 3339 timestamp.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SensorID   string  `json:"sensorId,omitempty"`
		SensorType string  `json:"sensorType"`
		Location   string  `json:"location"`
		Value      float64 `json:"value"`
		Timestamp  string  `json:"timestamp"`
	}{r.SensorID, r.SensorType, r.Location, r.Value, r.Timestamp.UTC().Format(time.RFC3339Nano)})
}

// UnmarshalJSON decodes the camelCase wire form.
func (a *AlertEvent) UnmarshalJSON(data []byte) error {
	var w wireAlert
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = AlertEvent{
		SensorType:      w.SensorType,
		CurrentValue:    w.CurrentValue,
		AlertType:       w.AlertType,
		Message:         w.Message,
		DurationSeconds: w.DurationSeconds,
		Timestamp:       w.Timestamp.Time,
		SensorID:        w.SensorID,
	}
	return nil
}

// DecodeReading parses one reading payload from the readings topic.
func DecodeReading(payload []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return Reading{}, errors.WrapWithCode(err, errors.ErrDecode,
			"Malformed reading payload", "")
	}
	if err := r.Validate(); err != nil {
		return Reading{}, err
	}
	return r, nil
}

// Validate reports a DECODE error when a field needed for grouping or
// plotting is missing.
func (r Reading) Validate() error {
	var missing []string
	if r.SensorType == "" {
		missing = append(missing, "sensorType")
	}
	if r.Location == "" {
		missing = append(missing, "location")
	}
	if r.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrDecode,
			"Reading is missing "+strings.Join(missing, ", "), "")
	}
	return nil
}

// DecodeAlert parses one alert payload from the alerts topic.
func DecodeAlert(payload []byte) (AlertEvent, error) {
	var a AlertEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return AlertEvent{}, errors.WrapWithCode(err, errors.ErrDecode,
			"Malformed alert payload", "")
	}
	return a, nil
}

// DecodeReadings parses a JSON array of readings, as served by the history
// API. Entries that fail Validate are left out and reported in rejected,
// one error per entry, naming its index.
func DecodeReadings(payload []byte) (readings []Reading, rejected []error, err error) {
	var rs []Reading
	if err := json.Unmarshal(payload, &rs); err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrDecode,
			"Malformed reading list", "")
	}
	readings = rs[:0]
	for i, r := range rs {
		if err := r.Validate(); err != nil {
			rejected = append(rejected, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		readings = append(readings, r)
	}
	return readings, rejected, nil
}
