package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rileyhilliard/sensorwatch/internal/ui"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// chartChrome is the horizontal space taken by the border, padding and the
// y-axis labels.
const chartChrome = 14

// MinChartWidth is the narrowest chart worth drawing side by side.
const MinChartWidth = 36

// ChartOptions controls RenderChart.
type ChartOptions struct {
	Width  int  // total width including the border
	Height int  // plot rows
	Color  bool // emit series colors
}

// RenderChart draws one chart inside a bordered box with a title, the plot,
// a time-range caption and a legend.
func RenderChart(c view.Chart, opts ChartOptions) string {
	if opts.Width < MinChartWidth {
		opts.Width = MinChartWidth
	}
	if opts.Height < 3 {
		opts.Height = 3
	}
	inner := opts.Width - 4

	title := ChartTitleStyle.Render(truncate(c.Title, inner))
	box := ChartStyle.Width(opts.Width - 2)

	if c.Empty() {
		label := "No data"
		if len(c.Series) > 0 && c.Series[0].Label != "" {
			label = c.Series[0].Label
		}
		body := lipgloss.Place(inner, opts.Height+2, lipgloss.Center, lipgloss.Center,
			PlaceholderStyle.Render(label))
		return box.Render(title + "\n" + body)
	}

	live := liveSeries(c)
	cols := inner - chartChrome
	if cols < 2 {
		cols = 2
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Caption(timeCaption(live)),
	}
	if opts.Color {
		colors := make([]asciigraph.AnsiColor, len(live))
		for i, s := range live {
			colors[i] = XtermColor(s.Color)
		}
		graphOpts = append(graphOpts, asciigraph.SeriesColors(colors...))
	}

	graph := asciigraph.PlotMany(Resample(live, cols), graphOpts...)
	return box.Render(title + "\n" + graph + "\n" + renderLegend(live, inner))
}

// Resample lays series onto a shared time axis of n columns spanning the
// earliest to the latest point. Each column holds the latest value at or
// before its time; columns before a series' first point are NaN.
func Resample(series []view.Series, n int) [][]float64 {
	if n < 2 {
		n = 2
	}
	lo, hi := timeBounds(series)

	out := make([][]float64, len(series))
	for i, s := range series {
		col := make([]float64, n)
		j := -1
		for c := 0; c < n; c++ {
			t := lo + (hi-lo)*int64(c)/int64(n-1)
			for j+1 < len(s.Points) && s.Points[j+1].X <= t {
				j++
			}
			if j < 0 {
				col[c] = math.NaN()
			} else {
				col[c] = s.Points[j].Y
			}
		}
		out[i] = col
	}
	return out
}

// XtermColor maps a hex palette color to the nearest entry of the xterm-256
// 6x6x6 color cube.
func XtermColor(c view.Color) asciigraph.AnsiColor {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return asciigraph.Default
	}
	col = col.Clamped()
	level := func(v float64) int { return int(math.Round(v * 5)) }
	return asciigraph.AnsiColor(16 + 36*level(col.R) + 6*level(col.G) + level(col.B))
}

func liveSeries(c view.Chart) []view.Series {
	out := make([]view.Series, 0, len(c.Series))
	for _, s := range c.Series {
		if !s.Placeholder && len(s.Points) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func timeBounds(series []view.Series) (lo, hi int64) {
	lo, hi = math.MaxInt64, math.MinInt64
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		if x := s.Points[0].X; x < lo {
			lo = x
		}
		if x := s.Points[len(s.Points)-1].X; x > hi {
			hi = x
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func timeCaption(series []view.Series) string {
	lo, hi := timeBounds(series)
	from := view.Point{X: lo}.Time().Local()
	to := view.Point{X: hi}.Time().Local()
	layout := "15:04:05"
	if from.YearDay() != to.YearDay() || from.Year() != to.Year() {
		layout = "Jan 2 15:04"
	}
	return fmt.Sprintf("%s → %s", from.Format(layout), to.Format(layout))
}

func renderLegend(series []view.Series, width int) string {
	items := make([]string, len(series))
	for i, s := range series {
		swatch := lipgloss.NewStyle().Foreground(ui.HexColor(s.Color)).Render("■")
		items[i] = swatch + " " + LabelStyle.Render(s.Label)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(items, "   "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
