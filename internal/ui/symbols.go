package ui

import (
	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
)

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolWarning  = "⚠"
	SymbolInfo     = "ℹ"
	SymbolUrgent   = "‼"
)

// StateSymbol returns the glyph for a connection state.
func StateSymbol(s stream.State) string {
	switch s {
	case stream.Connected:
		return SymbolComplete
	case stream.Attempting:
		return SymbolProgress
	case stream.Error:
		return SymbolFail
	default:
		return SymbolPending
	}
}

// SeveritySymbol returns the glyph for an alert severity.
func SeveritySymbol(s alert.Severity) string {
	switch s {
	case alert.Critical:
		return SymbolUrgent
	case alert.Error:
		return SymbolFail
	case alert.Warning:
		return SymbolWarning
	case alert.Success:
		return SymbolSuccess
	default:
		return SymbolInfo
	}
}
