package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List known sensor types and locations",
	Long: `Print the tag catalog served by the sensor API: every sensor type and
location that can be used with --sensor-type and --location.

Examples:
  sensorwatch tags
  sensorwatch tags --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := commandLogger(cfg, false, "[tags] ")
		ctx, cancel := context.WithTimeout(cmdContext(cmd), cfg.API.Timeout)
		defer cancel()
		return tagsCommand(ctx, os.Stdout, newAPIClient(cfg, log), jsonFlag)
	},
}

func init() {
	tagsCmd.Flags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	rootCmd.AddCommand(tagsCmd)
}

func tagsCommand(ctx context.Context, out io.Writer, fetcher dashboard.Fetcher, asJSON bool) error {
	tags, err := fetcher.Tags(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return WriteJSONSuccess(out, tags)
	}

	writeTagList(out, "Sensor types", tags.SensorTypes)
	fmt.Fprintln(out)
	writeTagList(out, "Locations", tags.Locations)
	return nil
}

func writeTagList(out io.Writer, title string, values []string) {
	fmt.Fprintln(out, ui.HeadingStyle().Render(fmt.Sprintf("%s (%d)", title, len(values))))
	if len(values) == 0 {
		fmt.Fprintln(out, "  "+ui.MutedStyle().Render("none"))
		return
	}
	fmt.Fprintln(out, "  "+strings.Join(values, "\n  "))
}
