package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) onScheduleLoaded(msg ScheduleLoadedMsg) Model {
	start, _ := model.MonthRange(m.schedule.month)
	if got, _ := model.MonthRange(msg.Month); !got.Equal(start) {
		// The user already paged to another month.
		return m
	}
	m.schedule.loading = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: "schedule: " + errorText(msg.Err), IsError: true}
		return m
	}
	m.schedule.items = model.TodosFromAPI(msg.Todos, m.loc)
	return m
}

func (m Model) handleScheduleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		return m.showMonth(m.schedule.month.AddDate(0, -1, 0))
	case "l", "right":
		return m.showMonth(m.schedule.month.AddDate(0, 1, 0))
	case "t":
		return m.showMonth(m.now().In(m.loc))
	case "r":
		return m.showMonth(m.schedule.month)
	}
	return m, nil
}

func (m Model) showMonth(t time.Time) (Model, tea.Cmd) {
	start, _ := model.MonthRange(t.In(m.loc))
	m.schedule.month = start
	m.schedule.loading = true
	m.schedule.items = nil
	return m, tea.Batch(m.loadScheduleCmd(start), m.spinner.Tick)
}

func (m Model) renderSchedule(s views.Styles) string {
	if m.schedule.loading && len(m.schedule.items) == 0 {
		return views.LoadingScreen(s, m.spinner.View(), "loading "+m.schedule.month.Format("January 2006"))
	}
	data := views.ScheduleData{Month: m.schedule.month.Format("January 2006")}
	for _, group := range model.GroupByDay(m.schedule.items) {
		data.Days = append(data.Days, views.DayData{
			Label: group.Day.Format("Mon Jan 2"),
			Items: m.todoRows(group.Todos),
		})
	}
	return views.RenderSchedule(s, data)
}
