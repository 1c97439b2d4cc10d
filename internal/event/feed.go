// Package event provides a small typed publish/subscribe feed. Producers
// publish values; consumers receive them on a channel and cancel when done.
//
// Publish never blocks. When a subscriber's buffer is full the oldest queued
// value is discarded to make room, so a slow consumer sees the latest state
// rather than stalling the producer.
package event

import (
	"sync"
)

// DefaultBuffer is the subscription buffer used when Subscribe gets zero.
const DefaultBuffer = 16

// Option configures a Feed.
type Option func(*options)

type options struct {
	replay bool
	onDrop func()
}

// WithReplay makes new subscribers receive the most recently published value
// immediately, like a behavior subject.
func WithReplay() Option {
	return func(o *options) { o.replay = true }
}

// WithDropHook registers a function called whenever a value is discarded
// because a subscriber fell behind.
func WithDropHook(fn func()) Option {
	return func(o *options) { o.onDrop = fn }
}

// Feed fans published values out to every live subscription.
type Feed[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	opts   options
	last   T
	has    bool
	closed bool
}

// NewFeed creates an open feed.
func NewFeed[T any](opts ...Option) *Feed[T] {
	f := &Feed[T]{subs: make(map[*Subscription[T]]struct{})}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// Subscription is one consumer's view of a Feed.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan T
	once sync.Once
}

// C returns the receive channel. It is closed when the subscription is
// cancelled or the feed is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel detaches the subscription and closes its channel. Safe to call more
// than once.
func (s *Subscription[T]) Cancel() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription[T]) closeLocked() {
	s.once.Do(func() {
		delete(s.feed.subs, s)
		close(s.ch)
	})
}

// Subscribe attaches a new consumer with the given channel buffer. Subscribing
// to a closed feed returns an already-closed subscription.
func (f *Feed[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription[T]{feed: f, ch: make(chan T, buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	f.subs[s] = struct{}{}
	if f.opts.replay && f.has {
		s.ch <- f.last
	}
	return s
}

// Publish delivers v to every subscriber. Publishing to a closed feed is a no-op.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.last = v
	f.has = true

	for s := range f.subs {
		f.offer(s, v)
	}
}

// offer enqueues v, evicting the oldest queued value if the buffer is full.
// Called with f.mu held, which makes the evict-then-send pair atomic with
// respect to other publishers.
func (f *Feed[T]) offer(s *Subscription[T], v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		select {
		case <-s.ch:
			if f.opts.onDrop != nil {
				f.opts.onDrop()
			}
		default:
		}
	}
}

// Latest returns the most recently published value, if any.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.has
}

// Len returns the number of live subscriptions.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close cancels every subscription and rejects further publishes. Idempotent.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for s := range f.subs {
		s.closeLocked()
	}
}
