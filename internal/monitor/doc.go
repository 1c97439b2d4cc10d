// Package monitor implements the live sensor dashboard TUI.
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the latest dashboard frame, alert list, toasts and popup
//   - Update: Processes keystrokes, feed messages and the relative-time tick
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// The model never computes charts itself. It subscribes to feeds and turns
// each received value into a message:
//
//  1. viewMsg carries a dashboard.View from the session loop
//  2. alertsMsg carries the rolling alert history
//  3. toastsMsg and popupMsg mirror the notify tray and panel
//  4. every handled message re-arms the wait on its feed
//
// When the view feed closes the program quits.
//
// # Charts
//
// Charts are drawn with asciigraph. Series timestamps are resampled onto a
// shared time axis (see Resample) and palette colors are mapped to the
// nearest xterm-256 cube entry (see XtermColor).
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	n / p       - Next / previous page
//	1-9         - Jump to page
//	r           - Reconnect now
//	c           - Clear filter
//	x, Esc      - Dismiss popup
//	d           - Dismiss newest toast
//	?           - Toggle help overlay
package monitor
