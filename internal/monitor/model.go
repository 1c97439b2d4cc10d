package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/event"
	"github.com/rileyhilliard/sensorwatch/internal/notify"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/ui"
)

// Controller is the session surface the dashboard drives. *dashboard.Session
// satisfies it.
type Controller interface {
	Views() *event.Subscription[dashboard.View]
	Alerts() *event.Subscription[[]alert.Notice]
	NextPage()
	PrevPage()
	GoToPage(n int)
	ApplyFilter(f sensor.Filter)
	ClearFilter()
	Reconnect()
}

// Options configures a Model.
type Options struct {
	Panel      *notify.Panel // nil hides popups
	Tray       *notify.Tray  // nil hides toasts
	Color      bool
	AlertLines int      // alerts listed under the charts (default: 5)
	Pick       PickFunc // filter form behind the f key (default: ui.PickFilter)
	Now        func() time.Time
}

// Default terminal size until the first WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 32
)

// refreshInterval re-renders relative times ("updated 4 seconds ago").
const refreshInterval = time.Second

// Model is the Bubble Tea model for the sensor dashboard.
type Model struct {
	ctrl  Controller
	panel *notify.Panel
	tray  *notify.Tray
	opts  Options

	views    *event.Subscription[dashboard.View]
	alerts   *event.Subscription[[]alert.Notice]
	toastSub *event.Subscription[[]notify.Toast]
	popupSub *event.Subscription[notify.PanelState]

	view      dashboard.View
	haveView  bool
	alertList []alert.Notice
	toasts    []notify.Toast
	popup     notify.PanelState

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	showHelp bool
	quitting bool
	now      time.Time
}

// viewMsg carries a new dashboard frame.
type viewMsg dashboard.View

// alertsMsg carries the rolling alert history.
type alertsMsg []alert.Notice

// toastsMsg carries the visible toasts.
type toastsMsg []notify.Toast

// popupMsg carries the popup panel state.
type popupMsg notify.PanelState

// feedClosedMsg reports that a feed ended.
type feedClosedMsg struct{ feed string }

// tickMsg refreshes relative times.
type tickMsg time.Time

// NewModel subscribes to the controller's feeds and the notification surfaces.
func NewModel(ctrl Controller, opts Options) Model {
	if opts.AlertLines <= 0 {
		opts.AlertLines = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Pick == nil {
		opts.Pick = ui.PickFilter
	}

	m := Model{
		ctrl:    ctrl,
		panel:   opts.Panel,
		tray:    opts.Tray,
		opts:    opts,
		views:   ctrl.Views(),
		alerts:  ctrl.Alerts(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: ui.NewSpinner(),
		width:   defaultWidth,
		height:  defaultHeight,
		now:     opts.Now(),
	}
	if m.panel != nil {
		m.popupSub = m.panel.Updates()
	}
	if m.tray != nil {
		m.toastSub = m.tray.Updates()
	}
	return m
}

// Init starts waiting on every feed.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitFor(m.views, "views", func(v dashboard.View) tea.Msg { return viewMsg(v) }),
		waitFor(m.alerts, "alerts", func(a []alert.Notice) tea.Msg { return alertsMsg(a) }),
		m.tickCmd(),
		m.spinner.Tick,
	}
	if m.toastSub != nil {
		cmds = append(cmds, waitFor(m.toastSub, "toasts", func(t []notify.Toast) tea.Msg { return toastsMsg(t) }))
	}
	if m.popupSub != nil {
		cmds = append(cmds, waitFor(m.popupSub, "popup", func(p notify.PanelState) tea.Msg { return popupMsg(p) }))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case viewMsg:
		m.view = dashboard.View(msg)
		m.haveView = true
		m.now = m.opts.Now()
		return m, waitFor(m.views, "views", func(v dashboard.View) tea.Msg { return viewMsg(v) })

	case alertsMsg:
		m.alertList = msg
		return m, waitFor(m.alerts, "alerts", func(a []alert.Notice) tea.Msg { return alertsMsg(a) })

	case toastsMsg:
		m.toasts = msg
		return m, waitFor(m.toastSub, "toasts", func(t []notify.Toast) tea.Msg { return toastsMsg(t) })

	case popupMsg:
		m.popup = notify.PanelState(msg)
		return m, waitFor(m.popupSub, "popup", func(p notify.PanelState) tea.Msg { return popupMsg(p) })

	case filterPickedMsg:
		m.applyPicked(msg)

	case feedClosedMsg:
		if msg.feed == "views" {
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.now = m.opts.Now()
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.popup.Visible {
		return m.renderPopupOverlay()
	}
	return m.renderDashboard()
}

// Current returns the latest frame received.
func (m Model) Current() (dashboard.View, bool) {
	return m.view, m.haveView
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitFor blocks on the next value of sub and wraps it as a message.
func waitFor[T any](sub *event.Subscription[T], name string, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return feedClosedMsg{feed: name}
		}
		return wrap(v)
	}
}
