package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.Scheduler != nil {
		cmds = append(cmds, waitForAlarmCmd(m.Scheduler.C()))
	}
	if m.backend != nil {
		cmds = append(cmds, m.profileCmd(), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.helpModel.Width = typed.Width
		m.syncTranscript()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		if m.Conversation.Sending() {
			m.syncTranscript()
		}
		return m, cmd
	case SwitchPageMsg:
		return m.switchPage(typed.Page)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case ProfileLoadedMsg:
		return m.onProfileLoaded(typed)
	case LoginDoneMsg:
		return m.onLoginDone(typed)
	case RegisterDoneMsg:
		return m.onRegisterDone(typed), nil
	case ResendDoneMsg:
		return m.onResendDone(typed), nil
	case LogoutDoneMsg:
		return m.onLogoutDone(typed), nil
	case DashboardLoadedMsg:
		return m.onDashboardLoaded(typed), nil
	case TodosLoadedMsg:
		return m.onTodosLoaded(typed), nil
	case ScheduleLoadedMsg:
		return m.onScheduleLoaded(typed), nil
	case SessionsLoadedMsg:
		return m.onSessionsLoaded(typed)
	case SessionCreatedMsg:
		return m.onSessionCreated(typed)
	case HistoryLoadedMsg:
		return m.onHistoryLoaded(typed)
	case UsageLoadedMsg:
		m = m.onUsageLoaded(typed)
		m.syncTranscript()
		return m, nil
	case StreamEventMsg:
		return m.onStreamEvent(typed)
	case StreamEndMsg:
		return m.onStreamEnd(typed)
	case MutationDoneMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: errorText(typed.Err), IsError: true}
			m.notify("Request failed", errorText(typed.Err), "error")
			return m, nil
		}
		m.Status = StatusBar{Text: typed.Message}
		if !typed.Reload {
			return m, nil
		}
		if m.Page == PageDashboard {
			return m, m.reloadPageCmd()
		}
		return m, tea.Batch(m.reloadPageCmd(), m.loadDashboardCmd())
	case AlarmDueMsg:
		return m.onAlarm(typed.Event)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return m.quit()
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.Page == PageAuth {
		return m.handleAuthKey(msg)
	}
	if m.Page == PageTodos && m.todos.form.active {
		return m.handleTodoFormKey(msg)
	}
	if m.Page == PageAgent && m.agent.composing {
		return m.handleAgentKey(msg)
	}

	switch keyStr {
	case "/":
		return m.openPalette()
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		return m.quit()
	case m.Keys.Dashboard:
		return m.switchPage(PageDashboard)
	case m.Keys.Todos:
		return m.switchPage(PageTodos)
	case m.Keys.Schedule:
		return m.switchPage(PageSchedule)
	case m.Keys.Agent:
		return m.switchPage(PageAgent)
	case m.Keys.Settings:
		return m.switchPage(PageSettings)
	}

	switch m.Page {
	case PageDashboard:
		if keyStr == "r" {
			return m.switchPage(PageDashboard)
		}
	case PageTodos:
		return m.handleTodosKey(msg)
	case PageSchedule:
		return m.handleScheduleKey(msg)
	case PageAgent:
		return m.handleAgentKey(msg)
	case PageSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.Quitting = true
	m.Shutdown()
	return m, tea.Quit
}

// switchPage navigates to p and fetches its data. Every page except Auth
// needs a signed-in user.
func (m Model) switchPage(p Page) (Model, tea.Cmd) {
	if p != PageAuth && m.User == nil {
		m.Page = PageAuth
		return m, nil
	}
	if m.Page == PageAgent && p != PageAgent {
		m.agent.composing = false
		m.agent.input.Blur()
	}
	if p != PageTodos {
		m.todos.form = todoFormState{}
	}
	m.Page = p
	switch p {
	case PageDashboard:
		m.dashboard.loading = true
		return m, tea.Batch(m.loadDashboardCmd(), m.spinner.Tick)
	case PageTodos:
		m.todos.loading = true
		return m, tea.Batch(m.loadTodosCmd(), m.spinner.Tick)
	case PageSchedule:
		return m.showMonth(m.schedule.month)
	case PageAgent:
		m.syncTranscript()
		return m.enterAgentPage()
	default:
		return m, nil
	}
}

func (m Model) busy() bool {
	return m.Booting || m.auth.busy || m.dashboard.loading || m.todos.loading ||
		m.schedule.loading || m.agent.loading || m.Conversation.Sending()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	s := views.NewStyles(m.dark())

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	body, side := "", ""
	switch m.Page {
	case PageAuth:
		body = m.renderAuth(s)
	case PageDashboard:
		body = m.renderDashboard(s)
	case PageTodos:
		body = m.renderTodos(s)
		side = m.renderTodoDetail(s)
		if m.todos.form.active {
			body = m.renderTodoForm(s)
		}
	case PageSchedule:
		body = m.renderSchedule(s)
	case PageAgent:
		data := m.agentData()
		body = views.RenderAgentHeader(s, data) + "\n\n" + m.agent.transcript.View() + "\n\n" + views.RenderAgentComposer(s, data)
		side = views.RenderSessionList(s, data)
	case PageSettings:
		body = m.renderSettings(s)
	}
	side = strings.TrimSpace(strings.Join([]string{side, m.renderHelpIfVisible()}, "\n\n"))
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); palette != "" {
		status = palette
	}

	header := "todoai"
	if m.User != nil {
		header += " | " + m.User.Email
	}
	data := views.AppData{
		Header:       header,
		Body:         body,
		Side:         side,
		StatusLine:   status,
		StatusError:  m.Status.IsError && !m.Palette.Active,
		Notification: m.renderNotificationsView(),
		Width:        m.width,
	}
	if m.User != nil {
		data.ActiveTab = -1
		for i, p := range navPages {
			data.Tabs = append(data.Tabs, fmt.Sprintf("%d %s", i+1, p))
			if p == m.Page {
				data.ActiveTab = i
			}
		}
		data.Footer = fmt.Sprintf("keys: %s-%s pages | / cmd | %s help | %s quit", m.Keys.Dashboard, m.Keys.Settings, m.Keys.Help, m.Keys.Quit)
	} else {
		data.Footer = "ctrl+c quit"
	}
	return views.RenderApp(s, data)
}
