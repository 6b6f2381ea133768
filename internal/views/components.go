package views

import (
	"fmt"
	"strings"
)

func PageHeader(s Styles, title, description string) string {
	if description == "" {
		return s.Header.Render(title)
	}
	return s.Header.Render(title) + "\n" + s.Subtle.Render(description)
}

// EmptyState is shown in place of an empty list. hint may be empty.
func EmptyState(s Styles, title, description, hint string) string {
	lines := []string{title, s.Subtle.Render(description)}
	if hint != "" {
		lines = append(lines, s.Accent.Render(hint))
	}
	return strings.Join(lines, "\n")
}

func LoadingScreen(s Styles, spinner, label string) string {
	if label == "" {
		label = "Loading..."
	}
	return fmt.Sprintf("%s %s", spinner, s.Subtle.Render(label))
}

func RoleBadge(s Styles, role string) string {
	style, ok := s.Badges[role]
	if !ok {
		style = s.Subtle
	}
	return style.Render(strings.ToUpper(role))
}

func ImportanceBadge(s Styles, importance, label string) string {
	style, ok := s.Priority[importance]
	if !ok {
		return s.Subtle.Render(label)
	}
	return style.Render(label)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level, title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if title == "" {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(level), body)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(level), title, body)
}

type HelpPanelData struct {
	CurrentPage string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s page:\n%s\n%s",
		strings.ToLower(data.CurrentPage),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
