// Package alert classifies raw sensor alerts into severity tiers and derives
// the popup and toast notifications shown for them.
package alert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// Severity is a notification tier.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
	Success // toasts only
)

var severityNames = map[Severity]string{
	Info:     "Info",
	Warning:  "Warning",
	Error:    "Error",
	Critical: "Critical",
	Success:  "Success",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Info"
}

// Urgent reports whether the tier demands manual dismissal and the long toast.
func (s Severity) Urgent() bool {
	return s == Error || s == Critical
}

// ParseSeverity maps a tier name, case-insensitively, to a Severity.
// Anything unrecognized becomes Info.
func ParseSeverity(name string) Severity {
	for s, n := range severityNames {
		if strings.EqualFold(n, name) {
			return s
		}
	}
	return Info
}

// Normalize clamps out-of-range values to Info.
func (s Severity) Normalize() Severity {
	if _, ok := severityNames[s]; ok {
		return s
	}
	return Info
}

// Levels is the pair of tiers derived from one alert type.
type Levels struct {
	Popup Severity
	Toast Severity
}

// Rules are evaluated top to bottom; the first rule with a matching
// substring wins.
var rules = []struct {
	substrings []string
	severity   Severity
}{
	{[]string{"CRITICAL"}, Critical},
	{[]string{"TOO_HIGH", "HIGH", "ERROR", "OFFLINE", "FAILURE"}, Error},
	{[]string{"WARNING", "TOO_LOW"}, Warning},
}

// Classify maps a raw alert type to popup and toast tiers.
func Classify(alertType string) Levels {
	upper := strings.ToUpper(alertType)
	for _, rule := range rules {
		for _, sub := range rule.substrings {
			if strings.Contains(upper, sub) {
				return Levels{Popup: rule.severity, Toast: rule.severity}
			}
		}
	}
	return Levels{Popup: Info, Toast: Info}
}

const (
	// PopupAutoClose is how long a non-urgent popup stays up.
	PopupAutoClose = 7 * time.Second
	// ToastUrgent is the toast lifetime for Error and Critical.
	ToastUrgent = 8 * time.Second
	// ToastNormal is the toast lifetime for everything else.
	ToastNormal = 5 * time.Second
)

// Popup is the modal notification payload.
type Popup struct {
	Level           Severity
	Message         string
	Timestamp       time.Time
	Source          string
	SensorID        string
	SensorType      string
	CurrentValue    float64
	AlertType       string
	DurationSeconds *float64
	// AutoClose is nil when the popup must be dismissed by hand.
	AutoClose *time.Duration
}

// Toast is the transient notification payload.
type Toast struct {
	Level    Severity
	Message  string
	Duration time.Duration
}

// Notice is the full set of notifications derived from one alert.
type Notice struct {
	Event sensor.AlertEvent
	Popup Popup
	Toast Toast
}

// Build classifies ev and derives its notifications. A missing timestamp is
// stamped with now.
func Build(ev sensor.AlertEvent, now time.Time) Notice {
	ev = ev.Stamp(now)
	levels := Classify(ev.AlertType)

	popup := Popup{
		Level:           levels.Popup,
		Message:         ev.Message,
		Timestamp:       ev.Timestamp,
		Source:          ev.Source(),
		SensorID:        ev.SensorID,
		SensorType:      ev.SensorType,
		CurrentValue:    ev.CurrentValue,
		AlertType:       ev.AlertType,
		DurationSeconds: ev.DurationSeconds,
	}
	if !levels.Popup.Urgent() {
		d := PopupAutoClose
		popup.AutoClose = &d
	}

	toast := Toast{
		Level:    levels.Toast,
		Message:  ToastMessage(ev),
		Duration: ToastNormal,
	}
	if levels.Toast.Urgent() {
		toast.Duration = ToastUrgent
	}

	return Notice{Event: ev, Popup: popup, Toast: toast}
}

// ToastMessage renders "<sensorType> (<alertType>): <value>. <message>".
func ToastMessage(ev sensor.AlertEvent) string {
	return fmt.Sprintf("%s (%s): %s. %s",
		ev.SensorType, ev.AlertType, FormatValue(ev.CurrentValue), ev.Message)
}

// FormatValue prints a reading value in its shortest exact form.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
