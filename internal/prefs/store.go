package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Preferences struct {
	Theme       Theme  `yaml:"theme"`
	LastSession string `yaml:"last_session,omitempty"`
}

func Defaults() Preferences {
	return Preferences{Theme: ThemeSystem}
}

// Store reads and writes Preferences as YAML at a fixed path. An empty
// path disables persistence.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

func (s *Store) Path() string { return s.path }

// Load returns defaults when the file is missing or empty.
func (s *Store) Load() (Preferences, error) {
	prefs := Defaults()
	if s.path == "" {
		return prefs, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read preferences: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return prefs, nil
	}

	var stored struct {
		Theme       string `yaml:"theme"`
		LastSession string `yaml:"last_session"`
	}
	if err := yaml.Unmarshal(raw, &stored); err != nil {
		return prefs, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	prefs.Theme = ParseTheme(stored.Theme)
	prefs.LastSession = strings.TrimSpace(stored.LastSession)
	return prefs, nil
}

// Save writes to a temp file and renames it over the target.
func (s *Store) Save(p Preferences) error {
	if s.path == "" {
		return nil
	}
	if !p.Theme.IsValid() {
		p.Theme = ThemeSystem
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preferences dir: %w", err)
		}
	}
	payload, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return os.Rename(tmp, s.path)
}
