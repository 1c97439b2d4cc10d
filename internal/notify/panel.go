package notify

import (
	"sync"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/event"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
)

// PanelState is what the popup surface currently shows.
type PanelState struct {
	Visible bool
	Popup   alert.Popup
}

// Panel is a single-slot popup surface. A new popup replaces the visible one.
type Panel struct {
	mu     sync.Mutex
	state  PanelState
	timer  *time.Timer
	gen    uint64
	feed   *event.Feed[PanelState]
	log    logger.Logger
	closed bool
}

// NewPanel returns a hidden panel.
func NewPanel(log logger.Logger) *Panel {
	p := &Panel{
		feed: event.NewFeed[PanelState](event.WithReplay()),
		log:  logger.OrDefault(log),
	}
	p.feed.Publish(PanelState{})
	return p
}

// Show displays popup, arming its auto-close timer if it has one.
// Unknown levels are shown as Info.
func (p *Panel) Show(popup alert.Popup) {
	if norm := popup.Level.Normalize(); norm != popup.Level {
		p.log.Warn("invalid popup level %d, defaulting to Info", int(popup.Level))
		popup.Level = norm
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.stopTimerLocked()
	p.gen++
	p.state = PanelState{Visible: true, Popup: popup}
	p.feed.Publish(p.state)

	if popup.AutoClose != nil {
		gen := p.gen
		p.timer = time.AfterFunc(*popup.AutoClose, func() { p.expire(gen) })
	}
}

// Hide clears the popup. Hiding an empty panel is a no-op.
func (p *Panel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hideLocked()
}

func (p *Panel) expire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A newer popup replaced the one this timer belonged to.
	if gen != p.gen {
		return
	}
	p.hideLocked()
}

func (p *Panel) hideLocked() {
	p.stopTimerLocked()
	if !p.state.Visible || p.closed {
		return
	}
	p.gen++
	p.state = PanelState{}
	p.feed.Publish(p.state)
}

func (p *Panel) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// State returns the current panel state.
func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Updates returns a feed of panel states, starting with the current one.
func (p *Panel) Updates() *event.Subscription[PanelState] {
	return p.feed.Subscribe(4)
}

// Close stops the timer and ends the update feed.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimerLocked()
	p.closed = true
	p.feed.Close()
}
