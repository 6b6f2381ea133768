package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/views"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldName
)

var authLabels = []string{"email", "password", "name"}

func (m Model) authFieldCount() int {
	if m.auth.register {
		return 3
	}
	return 2
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focusAuthField((m.auth.focus + 1) % m.authFieldCount())
		return m, nil
	case "shift+tab", "up":
		m.focusAuthField((m.auth.focus + m.authFieldCount() - 1) % m.authFieldCount())
		return m, nil
	case "ctrl+r":
		m.auth.register = !m.auth.register
		m.auth.err = ""
		m.auth.notice = ""
		m.focusAuthField(fieldEmail)
		return m, nil
	case "ctrl+v":
		if m.auth.busy {
			return m, nil
		}
		email := strings.TrimSpace(m.auth.inputs[fieldEmail].Value())
		if email == "" {
			m.auth.err = "enter the email to send the verification link to"
			return m, nil
		}
		m.auth.busy = true
		m.auth.err = ""
		return m, tea.Batch(m.resendCmd(email), m.spinner.Tick)
	case "enter":
		return m.submitAuth()
	}
	var cmd tea.Cmd
	m.auth.inputs[m.auth.focus], cmd = m.auth.inputs[m.auth.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusAuthField(idx int) {
	for i := range m.auth.inputs {
		if i == idx {
			m.auth.inputs[i].Focus()
		} else {
			m.auth.inputs[i].Blur()
		}
	}
	m.auth.focus = idx
}

func (m Model) submitAuth() (Model, tea.Cmd) {
	if m.auth.busy || m.backend == nil {
		return m, nil
	}
	email := strings.TrimSpace(m.auth.inputs[fieldEmail].Value())
	password := m.auth.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.auth.err = "email and password are required"
		return m, nil
	}
	m.auth.busy = true
	m.auth.err = ""
	m.auth.notice = ""
	if m.auth.register {
		name := strings.TrimSpace(m.auth.inputs[fieldName].Value())
		return m, tea.Batch(m.registerCmd(api.AccountRegister{Email: email, Password: password, Name: name}), m.spinner.Tick)
	}
	return m, tea.Batch(m.loginCmd(email, password), m.spinner.Tick)
}

func (m Model) onProfileLoaded(msg ProfileLoadedMsg) (Model, tea.Cmd) {
	m.Booting = false
	if msg.Err != nil {
		// No usable session yet; the login form takes over.
		m.log.WithError(msg.Err).Debug("no active login")
		m.Page = PageAuth
		return m, nil
	}
	return m.signedIn(msg.User)
}

func (m Model) onLoginDone(msg LoginDoneMsg) (Model, tea.Cmd) {
	m.auth.busy = false
	if msg.Err != nil {
		m.auth.err = errorText(msg.Err)
		return m, nil
	}
	m.auth.inputs[fieldPassword].SetValue("")
	return m.signedIn(msg.User)
}

func (m Model) onRegisterDone(msg RegisterDoneMsg) Model {
	m.auth.busy = false
	if msg.Err != nil {
		m.auth.err = errorText(msg.Err)
		return m
	}
	m.auth.register = false
	m.auth.inputs[fieldPassword].SetValue("")
	m.auth.inputs[fieldName].SetValue("")
	m.focusAuthField(fieldPassword)
	m.auth.notice = "account created for " + msg.User.Email + ", check your inbox to verify it"
	return m
}

func (m Model) onResendDone(msg ResendDoneMsg) Model {
	m.auth.busy = false
	if msg.Err != nil {
		m.auth.err = errorText(msg.Err)
		return m
	}
	m.auth.notice = msg.Message
	if m.auth.notice == "" {
		m.auth.notice = "verification email sent"
	}
	return m
}

func (m Model) signedIn(user api.User) (Model, tea.Cmd) {
	m.User = &user
	m.auth.err = ""
	m.log.WithField("user", user.Email).Info("signed in")
	m.Status = StatusBar{Text: "signed in as " + user.Email}
	return m.switchPage(PageDashboard)
}

func (m Model) onLogoutDone(msg LogoutDoneMsg) Model {
	if msg.Err != nil {
		m.log.WithError(msg.Err).Warn("logout request failed")
	}
	m.Conversation.Cancel()
	m.Conversation = newConversation()
	m.User = nil
	m.Page = PageAuth
	m.dashboard = dashboardState{}
	m.todos = todosState{includeSeries: true}
	m.schedule.items = nil
	m.agent.loaded = false
	m.agent.loading = false
	m.agent.composing = false
	m.auth.busy = false
	m.auth.notice = "signed out"
	m.focusAuthField(fieldEmail)
	if m.Scheduler != nil {
		if _, err := m.Scheduler.Replace(nil); err != nil {
			m.log.WithError(err).Debug("clear alarms")
		}
	}
	m.Status = StatusBar{Text: "signed out"}
	return m
}

func (m Model) renderAuth(s views.Styles) string {
	data := views.AuthData{
		Register: m.auth.register,
		Notice:   m.auth.notice,
		Error:    m.auth.err,
		Busy:     m.auth.busy || m.Booting,
		Spinner:  m.spinner.View(),
	}
	for i := 0; i < m.authFieldCount(); i++ {
		data.Fields = append(data.Fields, views.FieldRow{
			Label:   authLabels[i],
			View:    m.auth.inputs[i].View(),
			Focused: i == m.auth.focus,
		})
	}
	return views.RenderAuth(s, data)
}
