package stream

import (
	"context"
	"sync"
)

// fakeTransport hands out fakeConns and counts dial attempts.
type fakeTransport struct {
	mu    sync.Mutex
	dials int
	gate  chan struct{}
	fail  error
	conns []*fakeConn
}

func (t *fakeTransport) Dial(ctx context.Context) (Conn, error) {
	t.mu.Lock()
	t.dials++
	gate, fail := t.gate, t.fail
	t.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}

	c := newFakeConn()
	t.mu.Lock()
	t.conns = append(t.conns, c)
	t.mu.Unlock()
	return c, nil
}

func (t *fakeTransport) setFail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail = err
}

func (t *fakeTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

func (t *fakeTransport) conn(i int) *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= len(t.conns) {
		return nil
	}
	return t.conns[i]
}

func (t *fakeTransport) connCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

type fakeConn struct {
	mu         sync.Mutex
	handlers   map[string]Handler
	subscribes map[string]int
	unsubs     []string
	closed     bool
	err        error
	closeErr   error
	done       chan struct{}
	once       sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		handlers:   make(map[string]Handler),
		subscribes: make(map[string]int),
		done:       make(chan struct{}),
	}
}

func (c *fakeConn) Subscribe(_ context.Context, topic string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = h
	c.subscribes[topic]++
	return nil
}

func (c *fakeConn) Unsubscribe(_ context.Context, topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, topic)
	c.unsubs = append(c.unsubs, topic)
	return nil
}

func (c *fakeConn) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Done() <-chan struct{} { return c.done }

func (c *fakeConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	err := c.closeErr
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return err
}

// drop simulates a transport fault.
func (c *fakeConn) drop(err error) {
	c.mu.Lock()
	c.closed = true
	c.err = err
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
}

// deliver invokes the handler registered for topic, even after the conn has
// been dropped, to mimic a message already in flight.
func (c *fakeConn) deliver(topic, payload string) bool {
	c.mu.Lock()
	h, ok := c.handlers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	h(Message{Topic: topic, Payload: []byte(payload)})
	return true
}

func (c *fakeConn) subscribeCount(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribes[topic]
}

func (c *fakeConn) unsubscribed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.unsubs))
	copy(out, c.unsubs)
	return out
}
