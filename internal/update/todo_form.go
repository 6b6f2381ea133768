package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/views"
)

const (
	formItem = iota
	formDescription
	formStart
	formEnd
	formAlarm
	formImportance
	formFieldCount
)

var todoFormLabels = []string{"item", "description", "start", "end", "alarm", "importance"}

// todoFormState backs the create/edit form of the todos page. An empty id
// means the form creates a new todo.
type todoFormState struct {
	active bool
	id     string
	focus  int
	inputs []textinput.Model
	err    string
}

// openTodoForm fills the form from draft. Times use the datetime-local
// layout in the user's location.
func (m *Model) openTodoForm(draft model.TodoDraft) tea.Cmd {
	placeholders := []string{"what needs doing", "optional notes", model.LocalLayout, model.LocalLayout, "optional, " + model.LocalLayout, "none / low / medium / high"}
	values := []string{draft.Item, draft.Description, draft.Start, draft.End, draft.Alarm, string(draft.Importance)}
	m.todos.form = todoFormState{active: true, id: draft.ID, inputs: make([]textinput.Model, formFieldCount)}
	for i := range m.todos.form.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 512
		in.Placeholder = placeholders[i]
		in.SetValue(values[i])
		m.todos.form.inputs[i] = in
	}
	return m.focusTodoField(formItem)
}

// newTodoDraft starts at the next full hour and lasts one hour.
func (m Model) newTodoDraft() model.TodoDraft {
	start := m.now().In(m.loc).Truncate(time.Hour).Add(time.Hour)
	return model.TodoDraft{
		Start:      start.Format(model.LocalLayout),
		End:        start.Add(time.Hour).Format(model.LocalLayout),
		Importance: model.ImportanceNone,
	}
}

func (m *Model) focusTodoField(idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range m.todos.form.inputs {
		if i == idx {
			cmd = m.todos.form.inputs[i].Focus()
		} else {
			m.todos.form.inputs[i].Blur()
		}
	}
	m.todos.form.focus = idx
	return cmd
}

func (m Model) handleTodoFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.todos.form = todoFormState{}
		return m, nil
	case "tab", "down":
		cmd := m.focusTodoField((m.todos.form.focus + 1) % formFieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusTodoField((m.todos.form.focus + formFieldCount - 1) % formFieldCount)
		return m, cmd
	case "enter":
		return m.submitTodoForm()
	}
	var cmd tea.Cmd
	f := m.todos.form.focus
	m.todos.form.inputs[f], cmd = m.todos.form.inputs[f].Update(msg)
	return m, cmd
}

func (m Model) todoFormDraft() (model.TodoDraft, error) {
	in := m.todos.form.inputs
	importance, err := model.ParseImportance(in[formImportance].Value())
	if err != nil {
		return model.TodoDraft{}, err
	}
	return model.TodoDraft{
		ID:          m.todos.form.id,
		Item:        in[formItem].Value(),
		Description: in[formDescription].Value(),
		Start:       in[formStart].Value(),
		End:         in[formEnd].Value(),
		Alarm:       in[formAlarm].Value(),
		Importance:  importance,
	}, nil
}

// submitTodoForm keeps the form open on validation errors so the input is
// not lost.
func (m Model) submitTodoForm() (Model, tea.Cmd) {
	draft, err := m.todoFormDraft()
	if err != nil {
		m.todos.form.err = err.Error()
		return m, nil
	}
	if draft.ID == "" {
		cmd, err := m.createTodoCmd(draft)
		if err != nil {
			m.todos.form.err = err.Error()
			return m, nil
		}
		m.todos.form = todoFormState{}
		return m, cmd
	}
	payload, err := draft.Payload(m.loc)
	if err != nil {
		m.todos.form.err = err.Error()
		return m, nil
	}
	m.todos.form = todoFormState{}
	return m, m.mutateCmd("updated todo: "+payload.Item, func(ctx context.Context, b Backend) error {
		_, err := b.UpdateTodo(ctx, draft.ID, payload)
		return err
	})
}

func (m Model) renderTodoForm(s views.Styles) string {
	data := views.TodoFormData{Editing: m.todos.form.id != "", Error: m.todos.form.err}
	for i, in := range m.todos.form.inputs {
		data.Fields = append(data.Fields, views.FieldRow{
			Label:   todoFormLabels[i],
			View:    in.View(),
			Focused: i == m.todos.form.focus,
		})
	}
	return views.RenderTodoForm(s, data)
}
