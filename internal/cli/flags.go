package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// FilterFlags holds the filter flags shared by watch, tail and history.
type FilterFlags struct {
	SensorType string
	Location   string
	From       string
	To         string
}

// AddFilterFlags registers --sensor-type, --location, --from and --to on a command.
func AddFilterFlags(cmd *cobra.Command, flags *FilterFlags) {
	cmd.Flags().StringVarP(&flags.SensorType, "sensor-type", "t", "", "only show this sensor type")
	cmd.Flags().StringVarP(&flags.Location, "location", "l", "", "only show this location")
	cmd.Flags().StringVar(&flags.From, "from", "", "earliest reading time (ISO-8601, e.g. 2024-05-01T00:00:00Z)")
	cmd.Flags().StringVar(&flags.To, "to", "", "latest reading time (ISO-8601)")
}

// Filter parses the flags into a sensor filter. Bad timestamps come back as
// INPUT errors.
func (f FilterFlags) Filter() (sensor.Filter, error) {
	return sensor.ParseFilter(f.SensorType, f.Location, f.From, f.To)
}
