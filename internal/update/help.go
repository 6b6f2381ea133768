package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/todoai/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.pageBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentPage: string(m.Page),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "dashboard"},
		{Key: m.Keys.Todos, Action: "todos"},
		{Key: m.Keys.Schedule, Action: "schedule"},
		{Key: m.Keys.Agent, Action: "assistant"},
		{Key: m.Keys.Settings, Action: "settings"},
		{Key: "/", Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) pageBindings() []KeyBinding {
	switch m.Page {
	case PageAuth:
		return []KeyBinding{
			{Key: "tab", Action: "next field"},
			{Key: "enter", Action: "submit"},
			{Key: "ctrl+r", Action: "login / register"},
			{Key: "ctrl+v", Action: "resend verification email"},
		}
	case PageTodos:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "h", Action: "fold / unfold history"},
			{Key: "s", Action: "include / hide series items"},
			{Key: "a", Action: "new todo"},
			{Key: "e", Action: "edit selected"},
			{Key: "i", Action: "cycle importance"},
			{Key: "x", Action: "delete selected"},
			{Key: "r", Action: "reload"},
		}
	case PageSchedule:
		return []KeyBinding{
			{Key: "h/l", Action: "previous / next month"},
			{Key: "t", Action: "this month"},
			{Key: "r", Action: "reload"},
		}
	case PageAgent:
		return []KeyBinding{
			{Key: "enter/i", Action: "write a message"},
			{Key: "esc", Action: "stop reply / leave input"},
			{Key: "[ ]", Action: "previous / next session"},
			{Key: "n", Action: "new session"},
			{Key: "pgup/pgdown", Action: "scroll transcript"},
		}
	case PageSettings:
		return []KeyBinding{
			{Key: "l/d/s", Action: "light / dark / system theme"},
			{Key: "t", Action: "toggle theme"},
			{Key: "L", Action: "log out"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no page bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.pageBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.pageBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
