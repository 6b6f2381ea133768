package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) onTodosLoaded(msg TodosLoadedMsg) Model {
	m.todos.loading = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: errorText(msg.Err), IsError: true}
		return m
	}
	m.todos.current = model.TodosFromAPI(msg.Current, m.loc)
	m.todos.history = model.TodosFromAPI(msg.History, m.loc)
	m.todos.tags = m.todos.tags[:0]
	for _, tag := range msg.Tags {
		m.todos.tags = append(m.todos.tags, model.Tag{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	m.clampTodoCursor()
	return m
}

// visibleTodos is what the cursor walks: the current window, then history
// when it is unfolded.
func (m Model) visibleTodos() []model.Todo {
	out := append([]model.Todo(nil), m.todos.current...)
	if m.todos.historyOpen {
		out = append(out, m.todos.history...)
	}
	return out
}

func (m Model) selectedTodo() (model.Todo, bool) {
	items := m.visibleTodos()
	if m.todos.cursor < 0 || m.todos.cursor >= len(items) {
		return model.Todo{}, false
	}
	return items[m.todos.cursor], true
}

func (m *Model) clampTodoCursor() {
	n := len(m.visibleTodos())
	if m.todos.cursor >= n {
		m.todos.cursor = n - 1
	}
	if m.todos.cursor < 0 {
		m.todos.cursor = 0
	}
}

func (m Model) handleTodosKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.todos.cursor++
		m.clampTodoCursor()
	case "k", "up":
		m.todos.cursor--
		m.clampTodoCursor()
	case "h":
		m.todos.historyOpen = !m.todos.historyOpen
		m.clampTodoCursor()
	case "s":
		m.todos.includeSeries = !m.todos.includeSeries
		m.todos.loading = true
		return m, m.loadTodosCmd()
	case "r":
		m.todos.loading = true
		return m, tea.Batch(m.loadTodosCmd(), m.spinner.Tick)
	case "a":
		cmd := m.openTodoForm(m.newTodoDraft())
		return m, cmd
	case "e":
		todo, ok := m.selectedTodo()
		if !ok {
			return m, nil
		}
		cmd := m.openTodoForm(model.DraftFromTodo(todo))
		return m, cmd
	case "i":
		todo, ok := m.selectedTodo()
		if !ok {
			return m, nil
		}
		return m.updateImportance(todo)
	case "x":
		todo, ok := m.selectedTodo()
		if !ok {
			return m, nil
		}
		return m, m.deleteTodoCmd(todo.ID)
	}
	return m, nil
}

func nextImportance(current model.Importance) model.Importance {
	for i, level := range model.Importances {
		if level == current {
			return model.Importances[(i+1)%len(model.Importances)]
		}
	}
	return model.ImportanceNone
}

func (m Model) updateImportance(todo model.Todo) (Model, tea.Cmd) {
	draft := model.DraftFromTodo(todo)
	draft.Importance = nextImportance(todo.Importance)
	payload, err := draft.Payload(m.loc)
	if err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("cannot update %s: %v", todo.Item, err), IsError: true}
		return m, nil
	}
	msg := fmt.Sprintf("%s is now %s", todo.Item, draft.Importance.Label())
	return m, m.mutateCmd(msg, func(ctx context.Context, b Backend) error {
		_, err := b.UpdateTodo(ctx, todo.ID, payload)
		return err
	})
}

func (m Model) createTodoCmd(draft model.TodoDraft) (tea.Cmd, error) {
	payload, err := draft.Payload(m.loc)
	if err != nil {
		return nil, err
	}
	return m.mutateCmd("created todo: "+payload.Item, func(ctx context.Context, b Backend) error {
		_, err := b.CreateTodo(ctx, payload)
		return err
	}), nil
}

func (m Model) deleteTodoCmd(id string) tea.Cmd {
	return m.mutateCmd("deleted todo "+id, func(ctx context.Context, b Backend) error {
		_, err := b.DeleteTodo(ctx, id)
		return err
	})
}

func (m Model) createTagCmd(name, color string) tea.Cmd {
	return m.mutateCmd("created tag "+name, func(ctx context.Context, b Backend) error {
		_, err := b.CreateTag(ctx, api.TagCreate{Name: name, Color: color})
		return err
	})
}

func (m Model) deleteTagCmd(id string) tea.Cmd {
	return m.mutateCmd("deleted tag "+id, func(ctx context.Context, b Backend) error {
		_, err := b.DeleteTag(ctx, id)
		return err
	})
}

func (m Model) renderTodos(s views.Styles) string {
	if m.todos.loading && len(m.todos.current) == 0 && len(m.todos.history) == 0 {
		return views.LoadingScreen(s, m.spinner.View(), "loading todos")
	}
	data := views.TodosData{
		Search:        m.todos.search,
		IncludeSeries: m.todos.includeSeries,
		Current:       m.todoRows(m.todos.current),
		History:       m.todoRows(m.todos.history),
		HistoryOpen:   m.todos.historyOpen,
	}
	if todo, ok := m.selectedTodo(); ok {
		data.SelectedID = todo.ID
	}
	for _, tag := range m.todos.tags {
		data.Tags = append(data.Tags, views.TagRow{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	return views.RenderTodos(s, data)
}

func (m Model) renderTodoDetail(s views.Styles) string {
	todo, ok := m.selectedTodo()
	if !ok {
		return ""
	}
	lines := []string{
		s.Accent.Render(todo.Item),
		"start: " + model.FormatDateTime(isoOrEmpty(todo.Start), m.loc),
		"end: " + model.FormatDateTime(isoOrEmpty(todo.End), m.loc),
		"alarm: " + model.FormatDateTime(isoOrEmpty(todo.Alarm), m.loc),
		"importance: " + todo.Importance.Label(),
	}
	if d := strings.TrimSpace(todo.Description); d != "" {
		lines = append(lines, "", d)
	}
	lines = append(lines, "", s.Subtle.Render("e edit  i importance  x delete"))
	return strings.Join(lines, "\n")
}

func isoOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return model.ISO(t)
}
