package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorUrgent  lipgloss.Color = "9" // Bright red
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// DisableColors switches lipgloss to monochrome output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// SuccessStyle renders text in the success color.
func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }

// ErrorStyle renders text in the error color.
func ErrorStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorError) }

// WarningStyle renders text in the warning color.
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorMuted) }

// HeadingStyle renders section headings.
func HeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
}

// SeverityColor maps an alert severity to a terminal color.
func SeverityColor(s alert.Severity) lipgloss.Color {
	switch s {
	case alert.Critical:
		return ColorUrgent
	case alert.Error:
		return ColorError
	case alert.Warning:
		return ColorWarning
	case alert.Success:
		return ColorSuccess
	default:
		return ColorInfo
	}
}

// StateColor maps a connection state to a terminal color.
func StateColor(s stream.State) lipgloss.Color {
	switch s {
	case stream.Connected:
		return ColorSuccess
	case stream.Attempting:
		return ColorWarning
	case stream.Error:
		return ColorError
	default:
		return ColorMuted
	}
}

// HexColor converts a palette color for lipgloss. Placeholder series carry no
// color and render muted.
func HexColor(c view.Color) lipgloss.Color {
	if c == "" {
		return ColorMuted
	}
	return lipgloss.Color(string(c))
}
