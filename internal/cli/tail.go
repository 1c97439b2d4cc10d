package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

var (
	tailFlags    FilterFlags
	tailMinLevel string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream readings and alerts as plain lines",
	Long: `Stream connection changes, matching readings and alerts as plain lines,
suitable for piping or logging. History is summarized once it loads.

Examples:
  sensorwatch tail
  sensorwatch tail --sensor-type humidity
  sensorwatch tail --min-level error
  sensorwatch tail --no-color > sensors.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tailCommand(cmdContext(cmd), os.Stdout, tailFlags, alert.ParseSeverity(tailMinLevel))
	},
}

func init() {
	AddFilterFlags(tailCmd, &tailFlags)
	tailCmd.Flags().StringVar(&tailMinLevel, "min-level", "info",
		"Lowest alert tier printed: info, warning, error or critical")
	rootCmd.AddCommand(tailCmd)
}

func tailCommand(ctx context.Context, out io.Writer, flags FilterFlags, minLevel alert.Severity) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	filter, err := flags.Filter()
	if err != nil {
		return err
	}

	log := commandLogger(cfg, false, "[tail] ")
	printer := newTailPrinter(out, time.Now)
	printer.minLevel = minLevel

	session, err := newSession(cfg, filter, printer, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	views := session.Views()
	if err := session.Start(ctx); err != nil {
		return err
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case v, ok := <-views.C():
			if !ok {
				break loop
			}
			printer.Frame(v)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return session.Stop(stopCtx)
}

// tailPrinter turns dashboard frames and alerts into lines. It doubles as the
// session's alert dispatcher.
type tailPrinter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	minLevel alert.Severity // alerts below this tier are not printed

	started  bool
	state    stream.State
	loading  bool
	err      string
	matching int
}

func newTailPrinter(out io.Writer, now func() time.Time) *tailPrinter {
	return &tailPrinter{out: out, now: now}
}

// Frame prints whatever changed since the previous frame.
func (p *tailPrinter) Frame(v dashboard.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || v.State != p.state {
		p.line(ui.StateSymbol(v.State), ui.StateColor(v.State), "stream "+v.State.String())
		p.state = v.State
	}

	if v.Err != "" && v.Err != p.err {
		p.line(ui.SymbolFail, ui.ColorError, v.Err)
	}
	p.err = v.Err

	switch {
	case !p.started:
		if v.Loading {
			p.line(ui.SymbolPending, ui.ColorMuted, "loading history for "+v.Filter.String())
		}
	case p.loading && !v.Loading:
		p.line(ui.SymbolSuccess, ui.ColorSuccess, fmt.Sprintf("loaded history: %d matching readings", v.Matching))
		writeSummary(p.out, v.Snapshot)
		fmt.Fprintln(p.out)
	case v.Matching > p.matching:
		n := v.Matching - p.matching
		if n > len(v.Recent) {
			n = len(v.Recent)
		}
		// Recent is newest first; print oldest first.
		for i := n - 1; i >= 0; i-- {
			r := v.Recent[i]
			p.line("•", ui.ColorInfo, fmt.Sprintf("%-12s %-12s %s", r.SensorType, r.Location, alert.FormatValue(r.Value)))
		}
	}

	p.started = true
	p.loading = v.Loading
	p.matching = v.Matching
}

// Dispatch prints an alert notice at or above the printer's minimum tier.
func (p *tailPrinter) Dispatch(n alert.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	level := n.Popup.Level
	if level < p.minLevel {
		return
	}
	p.line(ui.SeveritySymbol(level), ui.SeverityColor(level),
		fmt.Sprintf("ALERT %s %s", level, n.Toast.Message))
}

func (p *tailPrinter) line(symbol string, color lipgloss.Color, text string) {
	stamp := ui.MutedStyle().Render(p.now().Format("15:04:05"))
	sym := lipgloss.NewStyle().Foreground(color).Render(symbol)
	fmt.Fprintf(p.out, "%s %s %s\n", stamp, sym, text)
}
