package monitor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/alert"
	"github.com/rileyhilliard/sensorwatch/internal/dashboard"
	"github.com/rileyhilliard/sensorwatch/internal/event"
	"github.com/rileyhilliard/sensorwatch/internal/notify"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
	"github.com/rileyhilliard/sensorwatch/internal/stream"
	"github.com/rileyhilliard/sensorwatch/internal/view"
)

type fakeController struct {
	mu     sync.Mutex
	calls  []string
	views  *event.Feed[dashboard.View]
	alerts *event.Feed[[]alert.Notice]
}

func newFakeController() *fakeController {
	return &fakeController{
		views:  event.NewFeed[dashboard.View](event.WithReplay()),
		alerts: event.NewFeed[[]alert.Notice](event.WithReplay()),
	}
}

func (c *fakeController) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeController) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeController) Views() *event.Subscription[dashboard.View]  { return c.views.Subscribe(4) }
func (c *fakeController) Alerts() *event.Subscription[[]alert.Notice] { return c.alerts.Subscribe(4) }
func (c *fakeController) NextPage()                                   { c.record("next") }
func (c *fakeController) PrevPage()                                   { c.record("prev") }
func (c *fakeController) ClearFilter()                                { c.record("clear") }
func (c *fakeController) ApplyFilter(f sensor.Filter)                 { c.record("filter:" + f.SensorType + "/" + f.Location) }
func (c *fakeController) Reconnect()                                  { c.record("reconnect") }
func (c *fakeController) GoToPage(n int) {
	c.record("goto:" + string(rune('0'+n)))
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *fakeController, *notify.Panel, *notify.Tray) {
	t.Helper()
	ctrl := newFakeController()
	panel := notify.NewPanel(nil)
	tray := notify.NewTray()
	t.Cleanup(func() {
		panel.Close()
		tray.Close()
	})
	m := NewModel(ctrl, Options{
		Panel: panel,
		Tray:  tray,
		Now:   func() time.Time { return fixedNow },
	})
	return m, ctrl, panel, tray
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func sampleView() dashboard.View {
	return dashboard.View{
		Snapshot: view.Snapshot{
			Mode: view.ModeLocationGrid,
			Charts: []view.Chart{{
				Title: "kitchen",
				Series: []view.Series{{
					Key: "temp", Label: "temp", Color: "#E69F00",
					Points: []view.Point{{X: fixedNow.Add(-time.Minute).UnixMilli(), Y: 21}, {X: fixedNow.UnixMilli(), Y: 22}},
				}},
			}},
			Page: view.PageInfo{Paged: true, Current: 1, Total: 2, Size: 1, Keys: 2},
		},
		Recent: []sensor.Reading{{SensorID: "s1", SensorType: "temp", Location: "kitchen", Value: 22, Timestamp: fixedNow}},
		State:    stream.Connected,
		Total:    2,
		Matching: 2,
		Updated:  fixedNow.Add(-3 * time.Second),
	}
}

func TestModel_KeysDispatchToController(t *testing.T) {
	m, ctrl, _, _ := newTestModel(t)

	for _, k := range []tea.KeyMsg{
		keyRunes("n"),
		{Type: tea.KeyLeft},
		keyRunes("3"),
		keyRunes("r"),
		keyRunes("c"),
	} {
		m, _ = update(t, m, k)
	}

	assert.Equal(t, []string{"next", "prev", "goto:3", "reconnect", "clear"}, ctrl.Calls())
}

func TestModel_StatusToasts(t *testing.T) {
	m, _, _, tray := newTestModel(t)

	m, _ = update(t, m, keyRunes("r"))
	_, _ = update(t, m, keyRunes("c"))

	list := tray.List()
	require.Len(t, list, 2)
	assert.Equal(t, alert.Warning, list[0].Level)
	assert.Equal(t, "Filter cleared", list[1].Message)
	assert.Equal(t, alert.Info, list[1].Level)
}

func TestModel_QuitKey(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	m, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_HelpToggle(t *testing.T) {
	m, ctrl, _, _ := newTestModel(t)

	m, _ = update(t, m, keyRunes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
	assert.Empty(t, ctrl.Calls())
}

func TestModel_DismissPopup(t *testing.T) {
	m, _, panel, _ := newTestModel(t)
	panel.Show(alert.Popup{Level: alert.Critical, Message: "way too hot", AlertType: "VALUE_TOO_HIGH"})

	m, _ = update(t, m, popupMsg(panel.State()))
	assert.Contains(t, m.View(), "way too hot")

	_, _ = update(t, m, keyRunes("x"))
	assert.False(t, panel.State().Visible)
}

func TestModel_DismissToast(t *testing.T) {
	m, _, _, tray := newTestModel(t)
	tray.Show("first", alert.Info, 0)
	tray.Show("second", alert.Warning, 0)

	_, _ = update(t, m, keyRunes("d"))

	list := tray.List()
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Message)
}

func TestModel_RendersView(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	v := sampleView()
	v.Err = "Error 500: Internal Server Error - db down"
	m, cmd := update(t, m, viewMsg(v))
	assert.NotNil(t, cmd, "re-arms the views wait")

	got, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, stream.Connected, got.State)

	out := m.View()
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "all readings")
	assert.Contains(t, out, "2/2 readings")
	assert.Contains(t, out, "3 seconds ago")
	assert.Contains(t, out, "db down")
	assert.Contains(t, out, "kitchen")
	assert.Contains(t, out, "page 1/2")
	assert.Contains(t, out, "Recent readings")
	assert.Contains(t, out, "No alerts")
}

func TestModel_RendersAlertsAndToasts(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	n := alert.Build(sensor.AlertEvent{
		SensorType:   "temp",
		CurrentValue: 41.5,
		AlertType:    "VALUE_TOO_HIGH",
		Message:      "too hot",
		Timestamp:    fixedNow.Add(-2 * time.Minute),
	}, fixedNow)

	m, _ = update(t, m, alertsMsg{n})
	m, _ = update(t, m, toastsMsg{{ID: "t1", Message: "toast body", Level: alert.Warning}})

	out := m.View()
	assert.Contains(t, out, "temp (VALUE_TOO_HIGH): 41.5. too hot")
	assert.Contains(t, out, "2 minutes ago")
	assert.Contains(t, out, "toast body")
}

func TestModel_ViewsFeedClosedQuits(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	m, cmd := update(t, m, feedClosedMsg{feed: "views"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)

	_, cmd = update(t, m, feedClosedMsg{feed: "toasts"})
	assert.Nil(t, cmd)
}

func TestWaitFor(t *testing.T) {
	feed := event.NewFeed[int]()
	sub := feed.Subscribe(1)
	cmd := waitFor(sub, "ints", func(v int) tea.Msg { return v * 2 })

	feed.Publish(21)
	assert.Equal(t, 42, cmd())

	feed.Close()
	assert.Equal(t, feedClosedMsg{feed: "ints"}, cmd())
}

func TestPageLine(t *testing.T) {
	assert.Empty(t, PageLine(view.PageInfo{}))
	assert.Empty(t, PageLine(view.PageInfo{Paged: true, Current: 1, Total: 1}))
	assert.Contains(t, PageLine(view.PageInfo{Paged: true, Current: 2, Total: 3, Keys: 7}), "page 2/3")
}

func TestModel_FilterKeyAppliesPickedFilter(t *testing.T) {
	ctrl := newFakeController()
	var gotTags sensor.Tags
	var gotInitial sensor.Filter
	m := NewModel(ctrl, Options{
		Now: func() time.Time { return fixedNow },
		Pick: func(tags sensor.Tags, initial sensor.Filter) (sensor.Filter, error) {
			gotTags, gotInitial = tags, initial
			return sensor.Filter{SensorType: "humidity"}, nil
		},
	})

	v := sampleView()
	v.Tags = sensor.Tags{SensorTypes: []string{"humidity", "temp"}, Locations: []string{"kitchen"}}
	v.Filter = sensor.Filter{Location: "kitchen"}
	m, _ = update(t, m, viewMsg(v))

	handled, cmd := m.HandleKeyMsg(keyRunes("f"))
	require.True(t, handled)
	require.NotNil(t, cmd)

	// Run the prompt the way the program does once the terminal is released.
	p := &filterPrompt{pick: m.opts.Pick, tags: m.view.Tags, initial: m.view.Filter}
	require.NoError(t, p.Run())
	assert.Equal(t, v.Tags, gotTags)
	assert.Equal(t, v.Filter, gotInitial)

	_, _ = update(t, m, filterPickedMsg{filter: p.result})
	assert.Equal(t, []string{"filter:humidity/"}, ctrl.Calls())
}

func TestModel_FilterPickOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls []string
		wantToast string
		wantLevel alert.Severity
	}{
		{"applied", nil, []string{"filter:temp/kitchen"}, "Filter: type=temp location=kitchen", alert.Success},
		{"aborted", fmt.Errorf("form: %w", huh.ErrUserAborted), nil, "", alert.Info},
		{"failed", fmt.Errorf("bad date"), nil, "Filter not applied: bad date", alert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl, _, tray := newTestModel(t)

			_, _ = update(t, m, filterPickedMsg{
				filter: sensor.Filter{SensorType: "temp", Location: "kitchen"},
				err:    tt.err,
			})

			if tt.wantCalls == nil {
				assert.Empty(t, ctrl.Calls())
			} else {
				assert.Equal(t, tt.wantCalls, ctrl.Calls())
			}
			toasts := tray.List()
			if tt.wantToast == "" {
				assert.Empty(t, toasts)
				return
			}
			require.Len(t, toasts, 1)
			assert.Equal(t, tt.wantToast, toasts[0].Message)
			assert.Equal(t, tt.wantLevel, toasts[0].Level)
		})
	}
}

func TestFilterPrompt_PropagatesError(t *testing.T) {
	p := &filterPrompt{pick: func(sensor.Tags, sensor.Filter) (sensor.Filter, error) {
		return sensor.Filter{SensorType: "ignored"}, fmt.Errorf("no tty")
	}}
	require.Error(t, p.Run())
	assert.True(t, p.result.IsZero())
}
