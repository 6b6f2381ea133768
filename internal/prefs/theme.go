// Package prefs keeps the user's local UI preferences.
package prefs

import "strings"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme maps unknown or empty values to ThemeSystem.
func ParseTheme(raw string) Theme {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t
	default:
		return ThemeSystem
	}
}

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Resolve turns a preference into the concrete theme to render.
func (t Theme) Resolve(systemDark bool) Theme {
	switch t {
	case ThemeLight, ThemeDark:
		return t
	}
	if systemDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle flips the resolved theme, leaving "system" behind.
func (t Theme) Toggle(systemDark bool) Theme {
	if t.Resolve(systemDark) == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
