package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/commands"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/prefs"
)

func (m Model) openPalette() (Model, tea.Cmd) {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.Status = StatusBar{Text: "command palette active"}
	return m, m.commandInput.Focus()
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.User == nil {
		m.Status = StatusBar{Text: "sign in first", IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		New: func() (commands.Result, error) {
			var next tea.Cmd
			m, next = m.switchPage(PageAgent)
			follow = tea.Batch(next, m.createSessionCmd())
			return commands.Result{Message: "creating a new session"}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			theme := prefs.ParseTheme(a.Mode)
			if a.Mode == "toggle" {
				theme = m.prefs.Theme.Toggle(m.systemDark)
			}
			m = m.setTheme(theme)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			m, follow = m.switchPage(pageFromName(a.Page))
			return commands.Result{Message: "showing " + a.Page}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.todos.search = strings.TrimSpace(a.Text)
			m.todos.cursor = 0
			m, follow = m.switchPage(PageTodos)
			if m.todos.search == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: "searching for " + m.todos.search}, nil
		},
		Add: func(a commands.AddArgs) (commands.Result, error) {
			draft := model.TodoDraft{Item: a.Item, Start: a.Start, End: a.End}
			if a.Importance != "" {
				level, err := model.ParseImportance(a.Importance)
				if err != nil {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
				}
				draft.Importance = level
			}
			next, err := m.createTodoCmd(draft)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			follow = next
			return commands.Result{Message: "adding " + a.Item}, nil
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			follow = m.deleteTodoCmd(a.TodoID)
			return commands.Result{Message: "deleting " + a.TodoID}, nil
		},
		Tag: func(a commands.TagArgs) (commands.Result, error) {
			follow = m.createTagCmd(a.Name, a.Color)
			return commands.Result{Message: "creating tag " + a.Name}, nil
		},
		Untag: func(a commands.UntagArgs) (commands.Result, error) {
			follow = m.deleteTagCmd(a.TagID)
			return commands.Result{Message: "deleting tag " + a.TagID}, nil
		},
		Refresh: func() (commands.Result, error) {
			follow = m.reloadPageCmd()
			return commands.Result{Message: "refreshing " + strings.ToLower(string(m.Page))}, nil
		},
		Logout: func() (commands.Result, error) {
			follow = m.logoutCmd()
			return commands.Result{Message: "signing out"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, follow
}

func pageFromName(name string) Page {
	for _, p := range navPages {
		if strings.EqualFold(string(p), name) {
			return p
		}
	}
	return PageDashboard
}
