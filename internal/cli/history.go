package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensorwatch/internal/buffer"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/monitor"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// historyOptions are the output switches for the history command.
type historyOptions struct {
	Filter sensor.Filter
	View   view.Config
	Page   int
	Chart  bool
	Table  bool
	JSON   bool
	Width  int
	Color  bool
}

// HistoryOutput is the --json payload of the history command.
type HistoryOutput struct {
	Filter   string           `json:"filter"`
	Mode     string           `json:"mode"`
	Count    int              `json:"count"`
	Readings []sensor.Reading `json:"readings"`
	Tags     sensor.Tags      `json:"tags"`
}

var (
	historyFlags FilterFlags
	historyPage  int
	historyChart bool
	historyTable bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Fetch and print historical readings",
	Long: `Fetch historical readings from the sensor API once and print them, grouped
the same way the dashboard groups them.

Examples:
  sensorwatch history
  sensorwatch history --sensor-type temperature --chart
  sensorwatch history --location kitchen --table
  sensorwatch history --from 2024-05-01 --to 2024-05-02 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		filter, err := historyFlags.Filter()
		if err != nil {
			return err
		}

		width := 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}

		log := commandLogger(cfg, false, "[history] ")
		ctx, cancel := context.WithTimeout(cmdContext(cmd), cfg.API.Timeout)
		defer cancel()

		return historyCommand(ctx, os.Stdout, newAPIClient(cfg, log), historyOptions{
			Filter: filter,
			View:   viewConfig(cfg),
			Page:   historyPage,
			Chart:  historyChart,
			Table:  historyTable,
			JSON:   jsonFlag,
			Width:  width,
			Color:  lipgloss.ColorProfile() != termenv.Ascii,
		})
	},
}

func init() {
	AddFilterFlags(historyCmd, &historyFlags)
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page of location charts to print")
	historyCmd.Flags().BoolVar(&historyChart, "chart", false, "draw charts instead of sparklines")
	historyCmd.Flags().BoolVar(&historyTable, "table", false, "print every reading as a table")
	historyCmd.Flags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	rootCmd.AddCommand(historyCmd)
}

func historyCommand(ctx context.Context, out io.Writer, fetcher dashboard.Fetcher, opts historyOptions) error {
	tags, err := fetcher.Tags(ctx)
	if err != nil {
		return err
	}
	readings, err := fetcher.Readings(ctx, opts.Filter)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch,
			"Historical fetch failed",
			"Check api_url, or narrow the time range with --from and --to.")
	}

	buf := buffer.New()
	buf.Seed(readings)
	matching := buf.Apply(opts.Filter)

	parts := view.NewPartitioner(opts.View)
	parts.Variables().Preseed(tags.SensorTypes)
	parts.Locations().Preseed(tags.Locations)
	snap := parts.Partition(opts.Filter, matching)
	if opts.Page > 1 && parts.GoToPage(opts.Page) {
		snap = parts.Partition(opts.Filter, matching)
	}

	if opts.JSON {
		return WriteJSONSuccess(out, HistoryOutput{
			Filter:   opts.Filter.String(),
			Mode:     snap.Mode.String(),
			Count:    len(matching),
			Readings: matching,
			Tags:     tags,
		})
	}

	if opts.Table {
		fmt.Fprintln(out, ui.RenderReadings(matching))
		return nil
	}

	if len(matching) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No readings match "+opts.Filter.String()))
		return nil
	}

	if opts.Chart {
		chartOpts := monitor.ChartOptions{Width: opts.Width, Height: 10, Color: opts.Color}
		for _, c := range snap.Charts {
			fmt.Fprintln(out, monitor.RenderChart(c, chartOpts))
		}
		if line := monitor.PageLine(snap.Page); line != "" {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	writeSummary(out, snap)
	return nil
}

// cmdContext returns the command's context, or Background when run outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
