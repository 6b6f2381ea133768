package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/prefs"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "l":
		return m.setTheme(prefs.ThemeLight), nil
	case "d":
		return m.setTheme(prefs.ThemeDark), nil
	case "s":
		return m.setTheme(prefs.ThemeSystem), nil
	case "t":
		return m.setTheme(m.prefs.Theme.Toggle(m.systemDark)), nil
	case "L":
		return m, m.logoutCmd()
	}
	return m, nil
}

func (m Model) setTheme(theme prefs.Theme) Model {
	m.prefs.Theme = theme
	m.Status = StatusBar{Text: fmt.Sprintf("theme: %s (showing %s)", theme, m.ResolvedTheme())}
	m.savePrefs()
	m.syncTranscript()
	return m
}

func (m Model) renderSettings(s views.Styles) string {
	data := views.SettingsData{
		ThemePreference:      string(m.prefs.Theme),
		ThemeResolved:        string(m.ResolvedTheme()),
		DesktopNotifications: m.desktopEnabled,
	}
	if m.backend != nil {
		data.BaseURL = m.backend.BaseURL()
	}
	if m.User != nil {
		data.Email = m.User.Email
		data.Name = m.User.Name
		data.Verified = m.User.IsVerified
	}
	if m.Scheduler != nil {
		data.AlarmsPending = m.Scheduler.Pending()
		data.AlarmsDropped = m.Scheduler.Dropped()
	}
	return views.RenderSettings(s, data)
}
