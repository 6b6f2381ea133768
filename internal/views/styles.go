package views

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Dark bool

	Header   lipgloss.Style
	Subtle   lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
	Footer   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Accent   lipgloss.Style
	Cursor   lipgloss.Style
	Badges   map[string]lipgloss.Style
	Priority map[string]lipgloss.Style
}

func NewStyles(dark bool) Styles {
	ink, soft, accent, danger, border := lipgloss.Color("236"), lipgloss.Color("244"), lipgloss.Color("28"), lipgloss.Color("160"), lipgloss.Color("250")
	if dark {
		ink, soft, accent, danger, border = lipgloss.Color("255"), lipgloss.Color("245"), lipgloss.Color("42"), lipgloss.Color("203"), lipgloss.Color("239")
	}
	badge := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	}
	return Styles{
		Dark:   dark,
		Header: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtle: lipgloss.NewStyle().Foreground(soft),
		Status: lipgloss.NewStyle().Foreground(accent),
		Error:  lipgloss.NewStyle().Foreground(danger),
		Panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Footer: lipgloss.NewStyle().Foreground(soft),
		Tab:    lipgloss.NewStyle().Foreground(soft).Padding(0, 1),
		TabOn:  lipgloss.NewStyle().Bold(true).Foreground(ink).Background(border).Padding(0, 1),
		Accent: lipgloss.NewStyle().Foreground(accent),
		Cursor: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Badges: map[string]lipgloss.Style{
			"user":      badge("33"),
			"assistant": badge("35"),
			"tool":      badge("136"),
			"system":    badge("244"),
		},
		Priority: map[string]lipgloss.Style{
			"high":   lipgloss.NewStyle().Foreground(danger),
			"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("172")),
			"low":    lipgloss.NewStyle().Foreground(soft),
		},
	}
}
