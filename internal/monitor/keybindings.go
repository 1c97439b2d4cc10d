package monitor

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/sensorwatch/internal/notify"
)

// keyMap holds the dashboard bindings. It implements help.KeyMap.
type keyMap struct {
	Quit         key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	GoToPage     key.Binding
	Reconnect    key.Binding
	Filter       key.Binding
	ClearFilter  key.Binding
	DismissPopup key.Binding
	DismissToast key.Binding
	Help         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left", "pgup"),
			key.WithHelp("p/←", "prev page"),
		),
		GoToPage: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to page"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filter"),
		),
		DismissPopup: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x/esc", "dismiss popup"),
		),
		DismissToast: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss toast"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.NextPage, k.PrevPage, k.Filter, k.Reconnect, k.Help}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.GoToPage, k.Filter, k.ClearFilter},
		{k.Reconnect, k.DismissPopup, k.DismissToast, k.Help, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// While help is showing, Esc closes it
	if m.showHelp && msg.String() == "esc" {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.NextPage):
		m.ctrl.NextPage()
		return true, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.ctrl.PrevPage()
		return true, nil

	case key.Matches(msg, m.keys.GoToPage):
		n, _ := strconv.Atoi(msg.String())
		m.ctrl.GoToPage(n)
		return true, nil

	case key.Matches(msg, m.keys.Reconnect):
		m.ctrl.Reconnect()
		m.toast(func(t *notify.Tray) { t.Warning("Reconnecting to the broker") })
		return true, nil

	case key.Matches(msg, m.keys.Filter):
		return true, m.pickFilterCmd()

	case key.Matches(msg, m.keys.ClearFilter):
		m.ctrl.ClearFilter()
		m.toast(func(t *notify.Tray) { t.Info("Filter cleared") })
		return true, nil

	case key.Matches(msg, m.keys.DismissPopup):
		if m.panel != nil {
			m.panel.Hide()
		}
		return true, nil

	case key.Matches(msg, m.keys.DismissToast):
		if m.tray != nil {
			m.tray.RemoveNewest()
		}
		return true, nil
	}

	return false, nil
}
