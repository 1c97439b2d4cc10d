package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// sparkWidth is how many of the newest points a summary sparkline shows.
const sparkWidth = 30

// writeSummary prints one block per chart, one line per series with a
// sparkline and the latest value.
func writeSummary(w io.Writer, snap view.Snapshot) {
	fmt.Fprintf(w, "%s  %s\n", ui.HeadingStyle().Render(snap.Mode.String()), ui.MutedStyle().Render(snap.Filter.String()))

	for _, c := range snap.Charts {
		fmt.Fprintf(w, "\n%s\n", ui.HeadingStyle().Render(c.Title))
		if c.Empty() {
			fmt.Fprintf(w, "  %s\n", ui.MutedStyle().Render(placeholderLabel(c)))
			continue
		}
		for _, s := range c.Series {
			fmt.Fprintln(w, seriesLine(s))
		}
	}

	if p := snap.Page; p.Paged && p.Total > 1 {
		fmt.Fprintf(w, "\n%s\n", ui.MutedStyle().Render(fmt.Sprintf("page %d of %d, %d groups", p.Current, p.Total, p.Keys)))
	}
}

func seriesLine(s view.Series) string {
	if s.Placeholder || len(s.Points) == 0 {
		return fmt.Sprintf("  %-16s %s", s.Label, ui.MutedStyle().Render("no data"))
	}
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Y
	}
	last := values[len(values)-1]
	spark := ui.RenderSparkline(values, sparkWidth, ui.HexColor(s.Color))
	return fmt.Sprintf("  %-16s %s %s %s", s.Label, spark, alert.FormatValue(last),
		ui.MutedStyle().Render(fmt.Sprintf("(%d points)", len(values))))
}

func placeholderLabel(c view.Chart) string {
	if len(c.Series) > 0 && c.Series[0].Label != "" {
		return c.Series[0].Label
	}
	return "No data"
}
