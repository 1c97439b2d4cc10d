// Package dashboard wires the stream, buffer, partitioner, and notification
// router into one running session.
//
// A single goroutine owns the reading history, the partitioner (and with it
// the color allocators and paginators), and the alert history. Stream
// messages, state changes, fetch completions, and user commands are all
// funneled into that goroutine, so none of that state needs locking.
// Consumers read immutable View values from the Views feed.
package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/buffer"
	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/event"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

// Stream is the live connection the session consumes. *stream.Machine
// satisfies it.
type Stream interface {
	Activate()
	Reconnect()
	Stop(ctx context.Context) error
	States() *event.Subscription[stream.State]
	Readings() *event.Subscription[stream.Message]
	Alerts() *event.Subscription[stream.Message]
}

// Fetcher loads history and the tag catalog. *api.Client satisfies it.
type Fetcher interface {
	Readings(ctx context.Context, f sensor.Filter) ([]sensor.Reading, error)
	Tags(ctx context.Context) (sensor.Tags, error)
}

// Dispatcher delivers alert notices. *notify.Router satisfies it.
type Dispatcher interface {
	Dispatch(n alert.Notice)
}

// Options are the session's collaborators and settings.
type Options struct {
	Stream     Stream
	Fetcher    Fetcher    // nil skips the historical fetch
	Dispatcher Dispatcher // nil drops alert notifications
	View       view.Config
	Filter     sensor.Filter // initial filter
	Recent     int           // readings kept in the recent list (default: 20)
	AlertLimit int           // alerts kept in history (default: 20)
	Logger     logger.Logger
	Now        func() time.Time
}

// View is one immutable frame of dashboard state.
type View struct {
	view.Snapshot
	Recent   []sensor.Reading
	State    stream.State
	Loading  bool
	Err      string
	Tags     sensor.Tags
	Total    int // readings held, before filtering
	Matching int // readings matching the filter
	Updated  time.Time
}

// Session is a running dashboard.
type Session struct {
	opts Options
	log  logger.Logger
	now  func() time.Time

	// Owned by the loop goroutine.
	buf      *buffer.Buffer
	parts    *view.Partitioner
	alerts   *alert.History
	filter   sensor.Filter
	snap     view.Snapshot
	recent   []sensor.Reading
	matching int
	state    stream.State
	loading  bool
	fetchErr string
	tagsErr  string
	tags     sensor.Tags
	fetchGen uint64 // bumped per history fetch; older results are dropped
	ctx      context.Context

	views     *event.Feed[View]
	alertFeed *event.Feed[[]alert.Notice]

	cmds     chan func()
	quit     chan struct{}
	loopDone chan struct{}
	cancel   context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	stopErr   error
}

// New builds a session. Nothing runs until Start.
func New(opts Options) *Session {
	if opts.Recent <= 0 {
		opts.Recent = 20
	}
	if opts.AlertLimit <= 0 {
		opts.AlertLimit = alert.DefaultHistorySize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		opts:      opts,
		log:       logger.OrDefault(opts.Logger),
		now:       opts.Now,
		buf:       buffer.New(),
		parts:     view.NewPartitioner(opts.View),
		alerts:    alert.NewHistory(opts.AlertLimit),
		filter:    opts.Filter,
		views:     event.NewFeed[View](event.WithReplay()),
		alertFeed: event.NewFeed[[]alert.Notice](event.WithReplay()),
		cmds:      make(chan func(), 64),
		quit:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
}

// Start subscribes to the stream, kicks off the historical fetch, and
// activates the connection. It returns immediately; progress shows up on the
// Views feed.
func (s *Session) Start(ctx context.Context) error {
	if s.opts.Stream == nil {
		return errors.New(errors.ErrConfig, "Dashboard has no stream", "")
	}

	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)

		readings := s.opts.Stream.Readings()
		alerts := s.opts.Stream.Alerts()
		states := s.opts.Stream.States()

		s.loading = s.opts.Fetcher != nil
		s.recompute()
		s.publish()

		go s.loop(s.ctx, readings, alerts, states)

		if s.opts.Fetcher != nil {
			s.fetchGen++
			go s.fetch(s.ctx, s.filter, s.fetchGen, true)
		}
		s.opts.Stream.Activate()
	})
	return nil
}

// Stop ends the loop and tears down the stream. Idempotent.
func (s *Session) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.cancel != nil {
			s.cancel()
			select {
			case <-s.loopDone:
			case <-ctx.Done():
			}
		}
		if s.opts.Stream != nil {
			s.stopErr = s.opts.Stream.Stop(ctx)
		}
		s.views.Close()
		s.alertFeed.Close()
	})
	return s.stopErr
}

// Views subscribes to dashboard frames, starting with the current one.
func (s *Session) Views() *event.Subscription[View] {
	return s.views.Subscribe(8)
}

// Alerts subscribes to the rolling alert history, newest first.
func (s *Session) Alerts() *event.Subscription[[]alert.Notice] {
	return s.alertFeed.Subscribe(8)
}

// Current returns the latest frame.
func (s *Session) Current() View {
	v, _ := s.views.Latest()
	return v
}

// ApplyFilter replaces the active filter and re-partitions from page 1.
// Held readings are re-filtered at once; history for the new filter is then
// fetched again and replaces the previous historical batch.
func (s *Session) ApplyFilter(f sensor.Filter) {
	s.do(func() {
		s.filter = f
		s.parts.ResetPages()
		if s.opts.Fetcher != nil {
			s.loading = true
			s.fetchGen++
			go s.fetch(s.ctx, f, s.fetchGen, false)
		}
		s.recompute()
		s.publish()
	})
}

// ClearFilter removes every filter field.
func (s *Session) ClearFilter() {
	s.ApplyFilter(sensor.Filter{})
}

// NextPage advances the current mode's paginator.
func (s *Session) NextPage() {
	s.do(func() { s.page(s.parts.NextPage()) })
}

// PrevPage steps the current mode's paginator back.
func (s *Session) PrevPage() {
	s.do(func() { s.page(s.parts.PrevPage()) })
}

// GoToPage jumps to page n; out-of-range pages are ignored.
func (s *Session) GoToPage(n int) {
	s.do(func() { s.page(s.parts.GoToPage(n)) })
}

// Reconnect asks the stream to drop and redial.
func (s *Session) Reconnect() {
	s.opts.Stream.Reconnect()
}

func (s *Session) page(moved bool) {
	if !moved {
		return
	}
	s.recompute()
	s.publish()
}

// do queues fn for the loop goroutine. Dropped after Stop.
func (s *Session) do(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.quit:
	}
}

func (s *Session) loop(ctx context.Context,
	readings *event.Subscription[stream.Message],
	alerts *event.Subscription[stream.Message],
	states *event.Subscription[stream.State],
) {
	defer close(s.loopDone)
	defer readings.Cancel()
	defer alerts.Cancel()
	defer states.Cancel()

	rc, ac, sc := readings.C(), alerts.C(), states.C()
	for {
		select {
		case msg, ok := <-rc:
			if !ok {
				rc = nil
				continue
			}
			s.onReading(msg)
		case msg, ok := <-ac:
			if !ok {
				ac = nil
				continue
			}
			s.onAlert(msg)
		case st, ok := <-sc:
			if !ok {
				sc = nil
				continue
			}
			s.state = st
			s.publish()
		case fn := <-s.cmds:
			fn()
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		}
	}
}

func (s *Session) onReading(msg stream.Message) {
	r, err := sensor.DecodeReading(msg.Payload)
	if err != nil {
		s.log.Warn("discarding malformed message on %s: %s: %q", msg.Topic, errors.Summary(err), msg.Payload)
		return
	}
	s.buf.Ingest(r)
	if !s.filter.Matches(r) {
		return
	}
	s.recompute()
	s.publish()
}

func (s *Session) onAlert(msg stream.Message) {
	ev, err := sensor.DecodeAlert(msg.Payload)
	if err != nil {
		s.log.Warn("discarding malformed message on %s: %s: %q", msg.Topic, errors.Summary(err), msg.Payload)
		return
	}
	n := alert.Build(ev, s.now())
	s.alerts.Add(n)
	s.alertFeed.Publish(s.alerts.List())
	if s.opts.Dispatcher != nil {
		s.opts.Dispatcher.Dispatch(n)
	}
}

// fetch runs off the loop and hands its results back as a command. The tag
// catalog is only loaded with the opening fetch. Readings from a fetch that a
// later filter change superseded are dropped.
func (s *Session) fetch(ctx context.Context, f sensor.Filter, gen uint64, withTags bool) {
	var tags sensor.Tags
	var tagErr error
	if withTags {
		tags, tagErr = s.opts.Fetcher.Tags(ctx)
	}
	readings, readErr := s.opts.Fetcher.Readings(ctx, f)
	if ctx.Err() != nil {
		return
	}

	s.do(func() {
		if withTags {
			if tagErr != nil {
				s.log.Warn("tag catalog unavailable: %v", tagErr)
				s.tagsErr = errors.Summary(tagErr)
			} else {
				s.tags = tags
				s.parts.Variables().Preseed(tags.SensorTypes)
				s.parts.Locations().Preseed(tags.Locations)
			}
		}

		if gen == s.fetchGen {
			s.loading = false
			if readErr != nil {
				// Keep the previous batch; the error is shown alongside it.
				s.log.Warn("historical fetch failed: %v", readErr)
				s.fetchErr = errors.Summary(readErr)
			} else {
				s.buf.Seed(readings)
				s.fetchErr = ""
				s.log.Debug("loaded %d historical readings for %s", len(readings), f)
			}
		} else {
			s.log.Debug("dropping superseded history for %s", f)
		}

		s.recompute()
		s.publish()
	})
}

func (s *Session) errText() string {
	var problems []string
	for _, p := range []string{s.tagsErr, s.fetchErr} {
		if p != "" {
			problems = append(problems, p)
		}
	}
	return strings.Join(problems, "; ")
}

func (s *Session) recompute() {
	filtered := s.buf.Apply(s.filter)
	s.snap = s.parts.Partition(s.filter, filtered)
	s.recent = buffer.Recent(filtered, s.opts.Recent)
	s.matching = len(filtered)
}

func (s *Session) publish() {
	s.views.Publish(View{
		Snapshot: s.snap,
		Recent:   s.recent,
		State:    s.state,
		Loading:  s.loading,
		Err:      s.errText(),
		Tags:     s.tags,
		Total:    s.buf.Len(),
		Matching: s.matching,
		Updated:  s.now(),
	})
}
