// Package stream manages the live broker connection: dialing, subscribing to
// the readings and alerts topics, and reconnecting after faults.
//
// Connection faults never surface as errors. They show up only as state
// changes on the States feed, and the machine keeps retrying on a fixed delay
// until Stop.
package stream

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/event"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
)

// Config holds machine settings.
type Config struct {
	// ReadingsTopic carries sensor readings.
	ReadingsTopic string

	// AlertsTopic carries alert events.
	AlertsTopic string

	// ReconnectDelay is the fixed wait between attempts (default: 5s).
	ReconnectDelay time.Duration

	// ConnectTimeout bounds dial plus subscribe (default: 10s).
	ConnectTimeout time.Duration

	// ReadingsBuffer is the per-subscriber queue for the readings feed (default: 1024).
	ReadingsBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadingsTopic:  "sensors/data",
		AlertsTopic:    "alerts",
		ReconnectDelay: 5 * time.Second,
		ConnectTimeout: 10 * time.Second,
		ReadingsBuffer: 1024,
	}
}

// handle is the record of one live subscription. It is bound to the
// connection that created it and gates the handler so that once closed, no
// further message is delivered.
type handle struct {
	topic  string
	conn   Conn
	mu     sync.Mutex
	closed bool
}

func (h *handle) handler(feed *event.Feed[Message]) Handler {
	return func(msg Message) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			return
		}
		feed.Publish(msg)
	}
}

// close blocks until any in-flight delivery finishes.
func (h *handle) close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// Machine is the connection state machine.
type Machine struct {
	transport Transport
	cfg       Config
	log       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	conn     Conn
	handles  map[string]*handle
	running  bool
	stopped  bool
	kick     chan struct{}
	loopDone chan struct{}

	states   *event.Feed[State]
	readings *event.Feed[Message]
	alerts   *event.Feed[Message]
}

// New creates a machine in the Disconnected state. Nothing is dialed until
// Activate.
func New(t Transport, cfg Config, log logger.Logger) *Machine {
	def := DefaultConfig()
	if cfg.ReadingsTopic == "" {
		cfg.ReadingsTopic = def.ReadingsTopic
	}
	if cfg.AlertsTopic == "" {
		cfg.AlertsTopic = def.AlertsTopic
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ReadingsBuffer <= 0 {
		cfg.ReadingsBuffer = def.ReadingsBuffer
	}
	log = logger.OrDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		transport: t,
		cfg:       cfg,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		handles:   make(map[string]*handle),
		kick:      make(chan struct{}, 1),
		loopDone:  make(chan struct{}),
		states:    event.NewFeed[State](event.WithReplay()),
		readings: event.NewFeed[Message](event.WithDropHook(func() {
			log.Warn("reading consumer fell behind; dropped oldest queued reading")
		})),
		alerts: event.NewFeed[Message](),
	}
	m.states.Publish(Disconnected)
	return m
}

// Topics returns the readings and alerts topics, in that order.
func (m *Machine) Topics() []string {
	return []string{m.cfg.ReadingsTopic, m.cfg.AlertsTopic}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// States subscribes to state changes. The current state is delivered first.
func (m *Machine) States() *event.Subscription[State] {
	return m.states.Subscribe(16)
}

// Readings subscribes to raw payloads from the readings topic.
func (m *Machine) Readings() *event.Subscription[Message] {
	return m.readings.Subscribe(m.cfg.ReadingsBuffer)
}

// Alerts subscribes to raw payloads from the alerts topic.
func (m *Machine) Alerts() *event.Subscription[Message] {
	return m.alerts.Subscribe(64)
}

// Activate starts connecting. It is a no-op while Attempting or Connected,
// and after Stop. If the reconnect loop is already waiting out a delay, it is
// woken to retry now instead of starting a second loop.
func (m *Machine) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.state.Live() {
		return
	}
	m.setStateLocked(Attempting)

	if m.running {
		m.wakeLocked()
		return
	}
	m.running = true
	go m.run()
}

// Reconnect drops the current connection, if any, and retries immediately.
func (m *Machine) Reconnect() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	if !m.running {
		m.mu.Unlock()
		m.Activate()
		return
	}
	m.wakeLocked()
	conn := m.conn
	m.mu.Unlock()

	if conn != nil {
		m.log.Info("reconnect requested; closing current connection")
		_ = conn.Close()
	}
}

func (m *Machine) wakeLocked() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Machine) run() {
	defer close(m.loopDone)

	for {
		conn, err := m.connect()
		if err != nil {
			if m.ctx.Err() != nil {
				return
			}
			m.log.Warn("connect failed: %v", err)
			m.setState(Error)
		} else {
			select {
			case <-conn.Done():
				m.fault(conn)
			case <-m.ctx.Done():
				return
			}
		}

		timer := time.NewTimer(m.cfg.ReconnectDelay)
		select {
		case <-timer.C:
		case <-m.kick:
			timer.Stop()
		case <-m.ctx.Done():
			timer.Stop()
			return
		}

		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return
		}
		m.setStateLocked(Attempting)
		m.mu.Unlock()
	}
}

// connect dials and subscribes both topics. On success the machine is
// Connected and conn is current.
func (m *Machine) connect() (Conn, error) {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.ConnectTimeout)
	defer cancel()

	m.log.Debug("dialing broker")
	conn, err := m.transport.Dial(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		_ = conn.Close()
		return nil, context.Canceled
	}
	m.conn = conn
	m.mu.Unlock()

	if err := m.ensureSubscriptions(ctx, conn); err != nil {
		m.mu.Lock()
		m.dropHandlesLocked()
		m.conn = nil
		m.mu.Unlock()
		_ = conn.Close()
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		// Stop owns teardown of m.conn from here.
		return nil, context.Canceled
	}
	m.setStateLocked(Connected)
	m.log.Info("connected; subscribed to %s and %s", m.cfg.ReadingsTopic, m.cfg.AlertsTopic)
	return conn, nil
}

// ensureSubscriptions subscribes each topic at most once per connection. A
// topic whose handle is bound to conn while conn is active is skipped.
func (m *Machine) ensureSubscriptions(ctx context.Context, conn Conn) error {
	feeds := []struct {
		topic string
		feed  *event.Feed[Message]
	}{
		{m.cfg.ReadingsTopic, m.readings},
		{m.cfg.AlertsTopic, m.alerts},
	}

	for _, f := range feeds {
		m.mu.Lock()
		if h, ok := m.handles[f.topic]; ok {
			if h.conn == conn && conn.Active() {
				m.mu.Unlock()
				m.log.Debug("already subscribed to %s", f.topic)
				continue
			}
			h.close()
			delete(m.handles, f.topic)
		}
		h := &handle{topic: f.topic, conn: conn}
		m.handles[f.topic] = h
		m.mu.Unlock()

		if err := conn.Subscribe(ctx, f.topic, h.handler(f.feed)); err != nil {
			return errors.WrapWithCode(err, errors.ErrStream,
				"Couldn't subscribe to "+f.topic, "")
		}
	}
	return nil
}

// fault records the end of conn and invalidates its subscriptions.
func (m *Machine) fault(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.conn != conn {
		return
	}
	m.dropHandlesLocked()
	m.conn = nil

	if err := conn.Err(); err != nil {
		m.log.Warn("connection lost: %v", err)
		m.setStateLocked(Error)
		return
	}
	m.log.Info("connection closed")
	m.setStateLocked(Disconnected)
}

func (m *Machine) dropHandlesLocked() {
	for topic, h := range m.handles {
		h.close()
		delete(m.handles, topic)
	}
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.setStateLocked(s)
}

func (m *Machine) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.log.Debug("state %s -> %s", m.state, s)
	m.state = s
	m.states.Publish(s)
}

// Stop unsubscribes every topic, closes the connection, and ends all feeds.
// The final state is Disconnected, or Error if teardown failed. Only the
// first call does anything.
func (m *Machine) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	running := m.running
	m.mu.Unlock()

	m.cancel()

	var errs []error
	if running {
		select {
		case <-m.loopDone:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	m.mu.Lock()
	conn := m.conn
	handles := m.handles
	m.handles = make(map[string]*handle)
	m.conn = nil
	m.mu.Unlock()

	for topic, h := range handles {
		h.close()
		if conn != nil && h.conn == conn && conn.Active() {
			if err := conn.Unsubscribe(ctx, topic); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	final := Disconnected
	if len(errs) > 0 {
		final = Error
	}
	m.setStateLocked(final)
	m.mu.Unlock()

	m.states.Close()
	m.readings.Close()
	m.alerts.Close()

	if len(errs) > 0 {
		return errors.WrapWithCode(stderrors.Join(errs...), errors.ErrStream,
			"Stream teardown did not complete cleanly", "")
	}
	m.log.Debug("stopped")
	return nil
}
