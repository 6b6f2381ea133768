package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
	"github.com/sandeepkv93/todoai/internal/model"
)

const (
	dashboardPageSize = 200
	currentPageSize   = 120
	historyPageSize   = 200
	schedulePageSize  = 500
)

type ProfileLoadedMsg struct {
	User api.User
	Err  error
}

type LoginDoneMsg struct {
	User api.User
	Err  error
}

type RegisterDoneMsg struct {
	User api.User
	Err  error
}

type ResendDoneMsg struct {
	Message string
	Err     error
}

type LogoutDoneMsg struct {
	Err error
}

type DashboardLoadedMsg struct {
	Todos []api.TodoModel
	Usage *chat.Usage
	Err   error
}

type TodosLoadedMsg struct {
	Current []api.TodoModel
	History []api.TodoModel
	Tags    []api.TagModel
	Err     error
}

type ScheduleLoadedMsg struct {
	Month time.Time
	Todos []api.TodoModel
	Err   error
}

type SessionsLoadedMsg struct {
	Sessions []string
	Err      error
}

type SessionCreatedMsg struct {
	SessionID string
	Err       error
}

type HistoryLoadedMsg struct {
	SessionID string
	History   []any
	Err       error
}

type UsageLoadedMsg struct {
	Usage chat.Usage
	Err   error
}

// MutationDoneMsg reports a write. Reload asks for the current page to be
// fetched again.
type MutationDoneMsg struct {
	Message string
	Err     error
	Reload  bool
}

func (m Model) profileCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		user, err := backend.Profile(ctx)
		return ProfileLoadedMsg{User: user, Err: err}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if _, err := backend.Login(ctx, api.AccountLogin{Username: username, Password: password}); err != nil {
			return LoginDoneMsg{Err: err}
		}
		user, err := backend.Profile(ctx)
		return LoginDoneMsg{User: user, Err: err}
	}
}

func (m Model) registerCmd(in api.AccountRegister) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		user, err := backend.Register(ctx, in)
		return RegisterDoneMsg{User: user, Err: err}
	}
}

func (m Model) resendCmd(email string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		res, err := backend.ResendVerification(ctx, email)
		return ResendDoneMsg{Message: res.Message, Err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return LogoutDoneMsg{Err: backend.Logout(ctx)}
	}
}

func (m Model) loadDashboardCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		list, err := backend.ListTodos(ctx, api.TodoQuery{PageSize: dashboardPageSize})
		if err != nil {
			return DashboardLoadedMsg{Err: err}
		}
		out := DashboardLoadedMsg{Todos: list.Items}
		// Usage is decorative on the dashboard; a failure leaves it blank.
		if usage, err := backend.GetUsageStats(ctx); err == nil {
			out.Usage = &usage
		}
		return out
	}
}

func (m Model) loadTodosCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	now := m.now().In(m.loc)
	search := m.todos.search
	series := m.todos.includeSeries
	return func() tea.Msg {
		start, end := model.CurrentWindow(now)
		current, err := backend.ListTodos(ctx, api.TodoQuery{
			Search:             search,
			PageSize:           currentPageSize,
			IncludeSeriesItems: &series,
			StartFrom:          model.ISO(start),
			StartTo:            model.ISO(end),
		})
		if err != nil {
			return TodosLoadedMsg{Err: fmt.Errorf("load current todos: %w", err)}
		}
		history, err := backend.ListTodos(ctx, api.TodoQuery{
			Search:             search,
			PageSize:           historyPageSize,
			IncludeSeriesItems: &series,
			StartTo:            model.ISO(model.HistoryCutoff(now)),
		})
		if err != nil {
			return TodosLoadedMsg{Err: fmt.Errorf("load todo history: %w", err)}
		}
		tags, err := backend.ListTags(ctx)
		if err != nil {
			return TodosLoadedMsg{Err: fmt.Errorf("load tags: %w", err)}
		}
		return TodosLoadedMsg{Current: current.Items, History: history.Items, Tags: tags.Items}
	}
}

func (m Model) loadScheduleCmd(month time.Time) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		start, end := model.MonthRange(month)
		list, err := backend.ListTodos(ctx, api.TodoQuery{
			PageSize:  schedulePageSize,
			StartFrom: model.ISO(start),
			StartTo:   model.ISO(end.Add(-time.Millisecond)),
		})
		if err != nil {
			return ScheduleLoadedMsg{Month: month, Err: err}
		}
		return ScheduleLoadedMsg{Month: month, Todos: list.Items}
	}
}

func (m Model) loadSessionsCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		res, err := backend.ListAgentSessions(ctx)
		return SessionsLoadedMsg{Sessions: res.Sessions, Err: err}
	}
}

func (m Model) createSessionCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		res, err := backend.CreateAgentSession(ctx)
		return SessionCreatedMsg{SessionID: res.SessionID, Err: err}
	}
}

func (m Model) loadHistoryCmd(sessionID string) tea.Cmd {
	backend, ctx, limit := m.backend, m.ctx, m.historyLimit
	return func() tea.Msg {
		res, err := backend.GetSessionHistory(ctx, sessionID, limit)
		return HistoryLoadedMsg{SessionID: sessionID, History: res.History, Err: err}
	}
}

func (m Model) loadUsageCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		usage, err := backend.GetUsageStats(ctx)
		return UsageLoadedMsg{Usage: usage, Err: err}
	}
}

// mutateCmd runs a write against the backend and reports it with msg.
func (m Model) mutateCmd(msg string, fn func(context.Context, Backend) error) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if err := fn(ctx, backend); err != nil {
			return MutationDoneMsg{Err: err}
		}
		return MutationDoneMsg{Message: msg, Reload: true}
	}
}

// reloadPageCmd fetches whatever the current page shows.
func (m Model) reloadPageCmd() tea.Cmd {
	if m.backend == nil || m.User == nil {
		return nil
	}
	switch m.Page {
	case PageDashboard:
		return m.loadDashboardCmd()
	case PageTodos:
		return m.loadTodosCmd()
	case PageSchedule:
		return m.loadScheduleCmd(m.schedule.month)
	case PageAgent:
		return tea.Batch(m.loadSessionsCmd(), m.loadUsageCmd())
	default:
		return nil
	}
}

// errorText is the message shown to the user for a failed call.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
