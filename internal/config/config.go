// Package config loads client settings from defaults, an optional YAML
// file, a .env file and TODOAI_* environment variables, in increasing order
// of precedence. Command-line flags are applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TODOAI"

type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Agent AgentConfig `mapstructure:"agent"`
	Log   LogConfig   `mapstructure:"log"`
	UI    UIConfig    `mapstructure:"ui"`
	Mock  MockConfig  `mapstructure:"mock"`
}

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

type AgentConfig struct {
	Name string `mapstructure:"name"`
	// Timezone is sent with agent requests; empty means the local zone.
	Timezone string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type UIConfig struct {
	DesktopNotifications bool   `mapstructure:"desktop_notifications"`
	AlarmBuffer          int    `mapstructure:"alarm_buffer"`
	PrefsFile            string `mapstructure:"prefs_file"`
	// DetectBackground asks the terminal for the "system" theme; when off,
	// DarkBackground is the answer.
	DetectBackground bool `mapstructure:"detect_background"`
	DarkBackground   bool `mapstructure:"dark_background"`
}

type MockConfig struct {
	Addr       string        `mapstructure:"addr"`
	EventDelay time.Duration `mapstructure:"event_delay"`
	Quota      int           `mapstructure:"quota"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:8089")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.history_limit", 20)
	v.SetDefault("agent.name", "TodoAssistant")
	v.SetDefault("agent.timezone", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", defaultPath("todoai.log"))
	v.SetDefault("ui.desktop_notifications", false)
	v.SetDefault("ui.alarm_buffer", 64)
	v.SetDefault("ui.prefs_file", defaultPath("prefs.yaml"))
	v.SetDefault("ui.detect_background", true)
	v.SetDefault("ui.dark_background", true)
	v.SetDefault("mock.addr", "127.0.0.1:8089")
	v.SetDefault("mock.event_delay", 60*time.Millisecond)
	v.SetDefault("mock.quota", 100)
}

func Default() *Config {
	cfg, _ := load(viper.New(), "")
	return cfg
}

// Load reads configuration. An empty path skips the config file; a path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.HistoryLimit <= 0 {
		c.API.HistoryLimit = 20
	}
	if c.UI.AlarmBuffer <= 0 {
		c.UI.AlarmBuffer = 64
	}
	if strings.TrimSpace(c.Agent.Name) == "" {
		c.Agent.Name = "TodoAssistant"
	}
}

// Location resolves Agent.Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Agent.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Agent.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func defaultPath(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return name
	}
	return filepath.Join(dir, "todoai", name)
}
