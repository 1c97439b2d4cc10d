// Package ui provides terminal styling shared by sensorwatch's line output and
// the monitor dashboard.
//
// # Color Scheme
//
// Semantic colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - connected, success alerts
//	ColorError     (red)    - errors, critical alerts
//	ColorWarning   (yellow) - warnings, connecting
//	ColorInfo      (cyan)   - informational alerts
//	ColorMuted     (gray)   - timestamps, placeholders
//	ColorSecondary (blue)   - headings
//
// Series colors come from the view palette as hex values and pass through
// HexColor. Use DisableColors() for monochrome output (--no-color).
//
// # Symbols
//
// StateSymbol and SeveritySymbol map connection states and alert severities
// to single-cell glyphs.
//
// # Components
//
//	NewTable / RenderSimpleTable - bubbles table for readings and tags
//	RenderSparkline              - one-line trend for a series
//	PickFilter                   - huh form choosing the initial filter
package ui
