// Package notify delivers classified alerts to the popup and toast surfaces.
//
// Router is pure dispatch with no retry. Panel and Tray are the in-process
// sinks the TUI renders from: Panel holds at most one popup, Tray holds any
// number of toasts, each with its own expiry timer.
package notify

import (
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
)

// PopupSink shows a modal popup.
type PopupSink interface {
	Show(p alert.Popup)
}

// ToastSink shows a transient toast and returns its identity for removal.
type ToastSink interface {
	Show(message string, level alert.Severity, duration time.Duration) string
}

// Router forwards notices to the two sinks.
type Router struct {
	popups PopupSink
	toasts ToastSink
	log    logger.Logger
}

// NewRouter wires a router. Either sink may be nil to disable that surface.
func NewRouter(popups PopupSink, toasts ToastSink, log logger.Logger) *Router {
	return &Router{popups: popups, toasts: toasts, log: logger.OrDefault(log)}
}

// Dispatch sends n to both sinks. A notice that a sink drops is not resurfaced.
func (r *Router) Dispatch(n alert.Notice) {
	r.log.Debug("dispatch %s alert from %s: %s", n.Popup.Level, n.Popup.Source, n.Event.AlertType)
	if r.popups != nil {
		r.popups.Show(n.Popup)
	}
	if r.toasts != nil {
		r.toasts.Show(n.Toast.Message, n.Toast.Level, n.Toast.Duration)
	}
}
