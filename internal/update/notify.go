package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/scheduler"
	"github.com/sandeepkv93/todoai/internal/views"
)

const maxNotifications = 40

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

// notify records a notification and forwards it to the desktop when enabled.
// Only alarms and failures go to the desktop; routine status stays in the UI.
func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{Title: title, Body: body, Level: level, At: m.now().UTC()}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.desktopEnabled && m.notifier != nil && level != "info" {
		if err := m.notifier.Send(n); err != nil {
			m.log.WithError(err).Debug("desktop notification failed")
		}
	}
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title, n.Body)
}

func waitForAlarmCmd(ch <-chan scheduler.AlarmEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmDueMsg{Event: ev}
	}
}

func (m Model) onAlarm(ev scheduler.AlarmEvent) (Model, tea.Cmd) {
	title := ev.Title
	if title == "" {
		title = ev.TodoID
	}
	m.Status = StatusBar{Text: fmt.Sprintf("alarm: %s at %s", title, ev.TriggerAt.In(m.loc).Format("15:04"))}
	m.notify("Todo alarm", title, "alarm")
	if m.Scheduler != nil {
		return m, waitForAlarmCmd(m.Scheduler.C())
	}
	return m, nil
}
