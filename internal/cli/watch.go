package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/config"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/monitor"
	"github.com/rileyhilliard/sensorwatch/internal/notify"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

// shutdownTimeout bounds how long teardown waits on the broker.
const shutdownTimeout = 5 * time.Second

var (
	watchFlags FilterFlags
	watchPick  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live sensor dashboard",
	Long: `Open a full-screen dashboard that charts live sensor readings and pops up
alerts as they arrive. History matching the filter is loaded first.

With no filter, each location gets its own chart with one line per sensor
type. Pin --sensor-type to compare locations on one chart, or --location to
compare sensor types at one place.

When stdout is not a terminal, watch falls back to tail output.

Examples:
  sensorwatch watch
  sensorwatch watch --sensor-type temperature
  sensorwatch watch --location kitchen --from 2024-05-01
  sensorwatch watch --pick`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmdContext(cmd), watchFlags, watchPick)
	},
}

func init() {
	AddFilterFlags(watchCmd, &watchFlags)
	watchCmd.Flags().BoolVar(&watchPick, "pick", false, "choose the filter interactively from the tag catalog")
	rootCmd.AddCommand(watchCmd)
}

func watchCommand(ctx context.Context, flags FilterFlags, pick bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, ui.MutedStyle().Render("stdout is not a terminal, streaming lines instead"))
		return tailCommand(ctx, os.Stdout, flags, alert.Info)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter, err := flags.Filter()
	if err != nil {
		return err
	}

	log := commandLogger(cfg, true, "[watch] ")

	if pick {
		filter, err = pickFilter(ctx, cfg, filter, log)
		if err != nil {
			return err
		}
	}

	panel := notify.NewPanel(log)
	tray := notify.NewTray()
	defer panel.Close()
	defer tray.Close()

	session, err := newSession(cfg, filter, notify.NewRouter(panel, tray, log), log)
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return err
	}

	model := monitor.NewModel(session, monitor.Options{
		Panel: panel,
		Tray:  tray,
		Color: lipgloss.ColorProfile() != termenv.Ascii,
	})
	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := session.Stop(stopCtx); err != nil {
		log.Warn("shutdown: %v", err)
	}

	return runErr
}

func pickFilter(ctx context.Context, cfg *config.Config, initial sensor.Filter, log logger.Logger) (sensor.Filter, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	defer cancel()

	tags, err := newAPIClient(cfg, log).Tags(ctx)
	if err != nil {
		return sensor.Filter{}, err
	}
	return ui.PickFilter(tags, initial)
}
