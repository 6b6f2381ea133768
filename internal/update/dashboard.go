package update

import (
	"fmt"

	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/scheduler"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) onDashboardLoaded(msg DashboardLoadedMsg) Model {
	m.dashboard.loading = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: "dashboard: " + errorText(msg.Err), IsError: true}
		return m
	}
	todos := model.TodosFromAPI(msg.Todos, m.loc)
	m.dashboard.stats = model.DashboardStats(todos, m.now().In(m.loc))
	m.dashboard.usage = msg.Usage
	if msg.Usage != nil {
		m.Conversation.SetUsage(*msg.Usage)
	}
	m.armAlarms(todos)
	return m
}

// armAlarms replaces the pending alarms with the ones of todos.
func (m *Model) armAlarms(todos []model.Todo) {
	if m.Scheduler == nil {
		return
	}
	events := make([]scheduler.AlarmEvent, 0, len(todos))
	for _, todo := range todos {
		if todo.Alarm.IsZero() {
			continue
		}
		events = append(events, scheduler.AlarmEvent{
			ID:        "alarm-" + todo.ID,
			TodoID:    todo.ID,
			Title:     todo.Item,
			TriggerAt: todo.Alarm,
		})
	}
	n, err := m.Scheduler.Replace(events)
	if err != nil {
		m.log.WithError(err).Warn("arm alarms")
		return
	}
	m.log.WithField("count", n).Debug("alarms armed")
}

func (m Model) renderDashboard(s views.Styles) string {
	if m.dashboard.loading && m.dashboard.stats.Total == 0 {
		return views.LoadingScreen(s, m.spinner.View(), "loading overview")
	}
	stats := m.dashboard.stats
	data := views.DashboardData{
		Total:    stats.Total,
		Upcoming: stats.Upcoming,
		High:     stats.High,
		Next:     m.todoRows(stats.Next),
	}
	if u := m.dashboard.usage; u != nil {
		data.Usage = &views.UsageData{UsageCount: u.UsageCount, RemainingQuota: u.RemainingQuota, ResetDate: u.ResetDate}
	}
	return views.RenderDashboard(s, data)
}

func (m Model) todoRows(items []model.Todo) []views.TodoRow {
	rows := make([]views.TodoRow, 0, len(items))
	for _, todo := range items {
		row := views.TodoRow{
			ID:              todo.ID,
			Item:            todo.Item,
			When:            m.formatRange(todo),
			Importance:      string(todo.Importance),
			ImportanceLabel: todo.Importance.Label(),
		}
		if !todo.Alarm.IsZero() {
			row.Alarm = model.FormatDateTime(model.ISO(todo.Alarm), m.loc)
		}
		for _, tag := range todo.Tags {
			row.Tags = append(row.Tags, tag.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

func (m Model) formatRange(todo model.Todo) string {
	if todo.Start.IsZero() {
		return model.NotSet
	}
	start := model.FormatDateTime(model.ISO(todo.Start), m.loc)
	if todo.End.IsZero() {
		return start
	}
	end := todo.End.In(m.loc)
	if model.StartOfDay(end).Equal(model.StartOfDay(todo.Start.In(m.loc))) {
		return fmt.Sprintf("%s-%s", start, end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start, model.FormatDateTime(model.ISO(todo.End), m.loc))
}
