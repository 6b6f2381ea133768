package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	Tabs         []string
	ActiveTab    int
	Body         string
	Side         string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
	Width        int
}

func RenderApp(s Styles, data AppData) string {
	width := data.Width
	if width <= 0 {
		width = 120
	}

	lines := []string{s.Header.Render(data.Header)}
	if len(data.Tabs) > 0 {
		tabs := make([]string, 0, len(data.Tabs))
		for i, tab := range data.Tabs {
			if i == data.ActiveTab {
				tabs = append(tabs, s.TabOn.Render(tab))
			} else {
				tabs = append(tabs, s.Tab.Render(tab))
			}
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	}

	if strings.TrimSpace(data.Side) == "" {
		lines = append(lines, s.Panel.Width(width-4).Render(data.Body))
	} else {
		main := s.Panel.Width(width*2/3 - 4).Render(data.Body)
		side := s.Panel.Width(width/3 - 4).Render(data.Side)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, main, side))
	}

	if data.StatusLine != "" {
		if data.StatusError {
			lines = append(lines, s.Error.Render(data.StatusLine))
		} else {
			lines = append(lines, s.Status.Render(data.StatusLine))
		}
	}
	if data.Notification != "" {
		lines = append(lines, s.Panel.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, s.Footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders assistant replies. It falls back to the raw text
// when glamour cannot render.
func RenderMarkdown(md string, dark bool, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "light"
	if dark {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
