package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// ReadingColumns are the columns of the recent readings table.
var ReadingColumns = []TableColumn{
	{Title: "TIME", Width: 20},
	{Title: "TYPE", Width: 14},
	{Title: "LOCATION", Width: 18},
	{Title: "VALUE", Width: 10},
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// ReadingRows formats readings for ReadingColumns, in the order given.
func ReadingRows(rs []sensor.Reading) [][]string {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{
			r.Timestamp.Local().Format(time.DateTime),
			r.SensorType,
			r.Location,
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
	}
	return rows
}

// RenderReadings renders readings as a table, or a muted note when empty.
func RenderReadings(rs []sensor.Reading) string {
	if len(rs) == 0 {
		return MutedStyle().Render("No readings")
	}
	return RenderSimpleTable(ReadingColumns, ReadingRows(rs))
}
