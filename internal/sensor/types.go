// Package sensor defines the readings, alerts, and filters that flow through
// sensorwatch, along with their wire decoding.
package sensor

import (
	"time"
)

// Reading is one sensor measurement. Readings are immutable once received and
// are not deduplicated: the same measurement may arrive twice across a reconnect.
type Reading struct {
	SensorID   string
	SensorType string
	Location   string
	Value      float64
	Timestamp  time.Time
}

// AlertEvent is a raw alert as published on the alert topic.
type AlertEvent struct {
	SensorType      string
	CurrentValue    float64
	AlertType       string
	Message         string
	DurationSeconds *float64
	Timestamp       time.Time // zero until stamped
	SensorID        string
}

// Source names where an alert came from: the sensor ID when known, the sensor type otherwise.
func (a AlertEvent) Source() string {
	if a.SensorID != "" {
		return a.SensorID
	}
	return a.SensorType
}

// Stamp fills a missing timestamp with now.
func (a AlertEvent) Stamp(now time.Time) AlertEvent {
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	return a
}

// Tags is the vocabulary of filter choices served by the tag catalog.
type Tags struct {
	SensorTypes []string `json:"sensorTypes"`
	Locations   []string `json:"locations"`
}
