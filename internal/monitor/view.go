package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/notify"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// chartHeight is the plot height in rows for each chart.
const chartHeight = 8

func (m Model) renderDashboard() string {
	sections := []string{m.renderHeader()}

	if m.view.Err != "" {
		sections = append(sections, ErrorLineStyle.Render(ui.SymbolFail+" "+m.view.Err))
	}

	sections = append(sections, m.renderCharts())
	if line := m.renderPageLine(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.renderRecent(), m.renderAlerts())

	if toasts := m.renderToasts(); toasts != "" {
		sections = append(sections, toasts)
	}

	sections = append(sections, FooterStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	state := m.view.State
	status := lipgloss.NewStyle().Foreground(ui.StateColor(state)).
		Render(ui.StateSymbol(state) + " " + state.String())

	parts := []string{
		TitleStyle.Render("sensorwatch"),
		status,
		LabelStyle.Render(m.view.Filter.String()),
		LabelStyle.Render(m.view.Mode.String()),
		LabelStyle.Render(fmt.Sprintf("%d/%d readings", m.view.Matching, m.view.Total)),
	}
	if m.view.Loading {
		parts = append(parts, m.spinner.View()+" "+LabelStyle.Render("loading history"))
	} else if !m.view.Updated.IsZero() {
		parts = append(parts, LabelStyle.Render("updated "+humanize.RelTime(m.view.Updated, m.now, "ago", "from now")))
	}
	return HeaderStyle.Render(strings.Join(parts, "  "))
}

// renderCharts lays the charts out side by side when the terminal is wide
// enough, otherwise one per row.
func (m Model) renderCharts() string {
	charts := m.view.Charts
	if len(charts) == 0 {
		return PlaceholderStyle.Render("No charts")
	}

	perRow := m.width / MinChartWidth
	if perRow < 1 {
		perRow = 1
	}
	if perRow > len(charts) {
		perRow = len(charts)
	}
	width := m.width / perRow

	opts := ChartOptions{Width: width, Height: chartHeight, Color: m.opts.Color}
	var rows []string
	for i := 0; i < len(charts); i += perRow {
		end := i + perRow
		if end > len(charts) {
			end = len(charts)
		}
		rendered := make([]string, 0, end-i)
		for _, c := range charts[i:end] {
			rendered = append(rendered, RenderChart(c, opts))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderPageLine() string {
	return PageLine(m.view.Page)
}

// PageLine renders the page indicator, or "" when there is one page or none.
func PageLine(p view.PageInfo) string {
	if !p.Paged || p.Total <= 1 {
		return ""
	}
	dots := make([]string, p.Total)
	for i := range dots {
		dots[i] = ui.SymbolPending
		if i+1 == p.Current {
			dots[i] = ui.SymbolComplete
		}
	}
	return LabelStyle.Render(fmt.Sprintf("page %d/%d %s (%d groups)",
		p.Current, p.Total, strings.Join(dots, ""), p.Keys))
}

func (m Model) renderRecent() string {
	title := SectionStyle.Render("Recent readings")
	if len(m.view.Recent) == 0 {
		return title + "\n" + PlaceholderStyle.Render("No readings yet")
	}
	return title + "\n" + ui.RenderReadings(m.view.Recent)
}

func (m Model) renderAlerts() string {
	title := SectionStyle.Render("Alerts")
	if len(m.alertList) == 0 {
		return title + "\n" + PlaceholderStyle.Render("No alerts")
	}

	n := len(m.alertList)
	if n > m.opts.AlertLines {
		n = m.opts.AlertLines
	}
	lines := make([]string, 0, n)
	for _, a := range m.alertList[:n] {
		lines = append(lines, m.alertLine(a))
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (m Model) alertLine(a alert.Notice) string {
	level := a.Popup.Level
	sym := lipgloss.NewStyle().Foreground(ui.SeverityColor(level)).Render(ui.SeveritySymbol(level))
	when := humanize.RelTime(a.Event.Timestamp, m.now, "ago", "from now")
	return fmt.Sprintf("%s %s  %s", sym, a.Toast.Message, LabelStyle.Render(when))
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	// Newest on top.
	for i := len(m.toasts) - 1; i >= 0; i-- {
		lines = append(lines, renderToast(m.toasts[i]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderToast(t notify.Toast) string {
	color := ui.SeverityColor(t.Level)
	style := ToastStyle.BorderForeground(color)
	sym := lipgloss.NewStyle().Foreground(color).Render(ui.SeveritySymbol(t.Level))
	return style.Render(sym + " " + t.Message)
}

func (m Model) renderPopupOverlay() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		RenderPopup(m.popup.Popup))
}

// RenderPopup draws the modal alert box.
func RenderPopup(p alert.Popup) string {
	color := ui.SeverityColor(p.Level)
	heading := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(ui.SeveritySymbol(p.Level) + " " + strings.ToUpper(p.Level.String()) + ": " + p.AlertType)

	rows := [][2]string{
		{"Source", p.Source},
		{"Sensor type", p.SensorType},
		{"Value", alert.FormatValue(p.CurrentValue)},
		{"Time", p.Timestamp.Local().Format("2006-01-02 15:04:05")},
	}
	if p.DurationSeconds != nil {
		rows = append(rows, [2]string{"Duration", alert.FormatValue(*p.DurationSeconds) + "s"})
	}

	lines := []string{heading, "", p.Message, ""}
	for _, r := range rows {
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-12s", r[0]))+r[1])
	}

	hint := "Press x to dismiss"
	if p.AutoClose != nil {
		hint = fmt.Sprintf("Closes in %s, x to dismiss", p.AutoClose.String())
	}
	lines = append(lines, "", PlaceholderStyle.Render(hint))

	return PopupStyle.BorderForeground(color).Render(strings.Join(lines, "\n"))
}
