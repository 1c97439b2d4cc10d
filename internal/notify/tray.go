package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/event"
)

// DefaultToastDuration is used by the level helpers when no duration is given.
const DefaultToastDuration = 5 * time.Second

// Toast is one visible toast.
type Toast struct {
	ID       string
	Message  string
	Level    alert.Severity
	Duration time.Duration
	Shown    time.Time
}

// Tray holds the visible toasts in arrival order. Each toast with a positive
// duration expires on its own timer; Remove cancels that timer.
type Tray struct {
	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer
	feed   *event.Feed[[]Toast]
	now    func() time.Time
	closed bool
}

// NewTray returns an empty tray.
func NewTray() *Tray {
	t := &Tray{
		timers: make(map[string]*time.Timer),
		feed:   event.NewFeed[[]Toast](event.WithReplay()),
		now:    time.Now,
	}
	t.feed.Publish(nil)
	return t
}

// Show adds a toast and returns its ID. A zero duration never expires.
func (t *Tray) Show(message string, level alert.Severity, duration time.Duration) string {
	id := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return id
	}

	t.toasts = append(t.toasts, Toast{
		ID:       id,
		Message:  message,
		Level:    level,
		Duration: duration,
		Shown:    t.now(),
	})
	if duration > 0 {
		t.timers[id] = time.AfterFunc(duration, func() { t.Remove(id) })
	}
	t.publishLocked()
	return id
}

// Remove dismisses a toast and cancels its timer. Unknown IDs are ignored.
func (t *Tray) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}

	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i:i], t.toasts[i+1:]...)
			t.publishLocked()
			return
		}
	}
}

// RemoveNewest dismisses the most recent toast, if any.
func (t *Tray) RemoveNewest() {
	t.mu.Lock()
	if len(t.toasts) == 0 {
		t.mu.Unlock()
		return
	}
	id := t.toasts[len(t.toasts)-1].ID
	t.mu.Unlock()
	t.Remove(id)
}

// Info shows an Info toast. A missing duration uses DefaultToastDuration.
func (t *Tray) Info(message string, duration ...time.Duration) string {
	return t.Show(message, alert.Info, pick(duration))
}

// Warning shows a Warning toast.
func (t *Tray) Warning(message string, duration ...time.Duration) string {
	return t.Show(message, alert.Warning, pick(duration))
}

// Error shows an Error toast.
func (t *Tray) Error(message string, duration ...time.Duration) string {
	return t.Show(message, alert.Error, pick(duration))
}

// Success shows a Success toast.
func (t *Tray) Success(message string, duration ...time.Duration) string {
	return t.Show(message, alert.Success, pick(duration))
}

func pick(d []time.Duration) time.Duration {
	if len(d) > 0 {
		return d[0]
	}
	return DefaultToastDuration
}

// List returns the visible toasts, oldest first.
func (t *Tray) List() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

// Updates returns a feed of the toast list, starting with the current one.
func (t *Tray) Updates() *event.Subscription[[]Toast] {
	return t.feed.Subscribe(8)
}

// Close cancels every pending timer and ends the update feed.
func (t *Tray) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.closed = true
	t.feed.Close()
}

func (t *Tray) publishLocked() {
	t.feed.Publish(t.copyLocked())
}

func (t *Tray) copyLocked() []Toast {
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}
