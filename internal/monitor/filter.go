package monitor

import (
	stderrors "errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/notify"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// PickFunc asks the user for a filter. ui.PickFilter is the default.
type PickFunc func(tags sensor.Tags, initial sensor.Filter) (sensor.Filter, error)

// filterPickedMsg carries the outcome of the filter form.
type filterPickedMsg struct {
	filter sensor.Filter
	err    error
}

// filterPrompt runs the picker while Bubble Tea has released the terminal.
// It satisfies tea.ExecCommand.
type filterPrompt struct {
	pick    PickFunc
	tags    sensor.Tags
	initial sensor.Filter
	result  sensor.Filter
}

func (p *filterPrompt) Run() error {
	f, err := p.pick(p.tags, p.initial)
	if err != nil {
		return err
	}
	p.result = f
	return nil
}

// The huh form opens its own program on the terminal.
func (p *filterPrompt) SetStdin(io.Reader)  {}
func (p *filterPrompt) SetStdout(io.Writer) {}
func (p *filterPrompt) SetStderr(io.Writer) {}

// pickFilterCmd suspends the dashboard, shows the filter form seeded with the
// current filter and the tag catalog, and resumes with a filterPickedMsg.
func (m Model) pickFilterCmd() tea.Cmd {
	p := &filterPrompt{pick: m.opts.Pick, tags: m.view.Tags, initial: m.view.Filter}
	return tea.Exec(p, func(err error) tea.Msg {
		return filterPickedMsg{filter: p.result, err: err}
	})
}

func (m Model) applyPicked(msg filterPickedMsg) {
	switch {
	case msg.err == nil:
		m.ctrl.ApplyFilter(msg.filter)
		m.toast(func(t *notify.Tray) { t.Success("Filter: " + msg.filter.String()) })
	case stderrors.Is(msg.err, huh.ErrUserAborted):
	default:
		m.toast(func(t *notify.Tray) { t.Error("Filter not applied: " + errors.Summary(msg.err)) })
	}
}

// toast shows a status toast when a tray is attached.
func (m Model) toast(show func(*notify.Tray)) {
	if m.tray != nil {
		show(m.tray)
	}
}
