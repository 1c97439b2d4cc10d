package sensor

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
)

// Filter is the active filter combination. Empty fields match everything.
// Start and End bound the reading timestamp inclusively.
type Filter struct {
	SensorType string
	Location   string
	Start      time.Time
	End        time.Time
}

// ParseFilter builds a Filter from user-supplied strings. Dates accept any
// ISO-8601 form, including a bare date.
func ParseFilter(sensorType, location, start, end string) (Filter, error) {
	f := Filter{
		SensorType: strings.TrimSpace(sensorType),
		Location:   strings.TrimSpace(location),
	}

	var err error
	if f.Start, err = parseBound("start", start); err != nil {
		return Filter{}, err
	}
	if f.End, err = parseBound("end", end); err != nil {
		return Filter{}, err
	}

	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return Filter{}, errors.New(errors.ErrInput,
			"End date is before start date",
			"Swap --from and --to, or drop one of them.")
	}
	return f, nil
}

func parseBound(name, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, errors.WrapWithCode(err, errors.ErrInput,
			fmt.Sprintf("'%s' is not a valid %s date", s, name),
			"Use ISO-8601, like 2024-05-01 or 2024-05-01T10:00:00Z.")
	}
	return t, nil
}

// PinsSensorType reports whether the filter fixes the sensor type dimension.
func (f Filter) PinsSensorType() bool {
	return f.SensorType != ""
}

// PinsLocation reports whether the filter fixes the location dimension.
func (f Filter) PinsLocation() bool {
	return f.Location != ""
}

// IsZero reports whether no field is set.
func (f Filter) IsZero() bool {
	return f.SensorType == "" && f.Location == "" && f.Start.IsZero() && f.End.IsZero()
}

// Matches reports whether r satisfies every set field of the filter.
func (f Filter) Matches(r Reading) bool {
	if f.SensorType != "" && r.SensorType != f.SensorType {
		return false
	}
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && r.Timestamp.After(f.End) {
		return false
	}
	return true
}

// String renders the filter for headers and logs.
func (f Filter) String() string {
	if f.IsZero() {
		return "all readings"
	}
	var parts []string
	if f.SensorType != "" {
		parts = append(parts, "type="+f.SensorType)
	}
	if f.Location != "" {
		parts = append(parts, "location="+f.Location)
	}
	if !f.Start.IsZero() {
		parts = append(parts, "from="+f.Start.UTC().Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		parts = append(parts, "to="+f.End.UTC().Format(time.RFC3339))
	}
	return strings.Join(parts, " ")
}
