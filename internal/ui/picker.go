package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// anyOption is the select value meaning "no constraint".
const anyOption = ""

// FilterAnswers holds the raw picker fields before parsing.
type FilterAnswers struct {
	SensorType string
	Location   string
	From       string
	To         string
}

// PickFilter shows an interactive form populated from the tag catalog and
// returns the chosen filter. initial pre-selects values.
func PickFilter(tags sensor.Tags, initial sensor.Filter) (sensor.Filter, error) {
	answers := AnswersFromFilter(initial)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sensor type").
				Description("Pin one sensor type to compare locations on a single chart").
				Options(SelectOptions("All types", tags.SensorTypes)...).
				Value(&answers.SensorType),
			huh.NewSelect[string]().
				Title("Location").
				Description("Pin one location to compare its sensor types").
				Options(SelectOptions("All locations", tags.Locations)...).
				Value(&answers.Location),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("From (optional)").
				Description("ISO-8601, e.g. 2024-05-01T00:00:00Z").
				Value(&answers.From).
				Validate(validateTime),
			huh.NewInput().
				Title("To (optional)").
				Value(&answers.To).
				Validate(validateTime),
		),
	)

	if err := form.Run(); err != nil {
		return sensor.Filter{}, errors.WrapWithCode(err, errors.ErrInput,
			"Failed to get filter selection",
			"Pass --sensor-type, --location, --from or --to instead of --pick")
	}

	return answers.Filter()
}

// SelectOptions builds select options with a leading "all" choice.
func SelectOptions(allLabel string, values []string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(values)+1)
	opts = append(opts, huh.NewOption(allLabel, anyOption))
	for _, v := range values {
		if v == anyOption {
			continue
		}
		opts = append(opts, huh.NewOption(v, v))
	}
	return opts
}

// AnswersFromFilter pre-fills picker fields from a filter.
func AnswersFromFilter(f sensor.Filter) FilterAnswers {
	a := FilterAnswers{SensorType: f.SensorType, Location: f.Location}
	if !f.Start.IsZero() {
		a.From = f.Start.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if !f.End.IsZero() {
		a.To = f.End.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return a
}

// Filter parses the answers.
func (a FilterAnswers) Filter() (sensor.Filter, error) {
	return sensor.ParseFilter(a.SensorType, a.Location,
		strings.TrimSpace(a.From), strings.TrimSpace(a.To))
}

func validateTime(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := sensor.ParseTime(s); err != nil {
		return fmt.Errorf("not an ISO-8601 time: %s", s)
	}
	return nil
}
