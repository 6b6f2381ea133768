package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/config"
	"github.com/sandeepkv93/todoai/internal/logger"
	"github.com/sandeepkv93/todoai/internal/prefs"
	"github.com/sandeepkv93/todoai/internal/scheduler"
	"github.com/sandeepkv93/todoai/internal/update"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todoai failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		baseURL    string
		logLevel   string
		desktop    bool
	)
	flagSet := pflag.NewFlagSet("todoai", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&baseURL, "api", "", "backend base URL (overrides TODOAI_API_BASE_URL)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.BoolVar(&desktop, "desktop-notifications", false, "send alarms and failures to the desktop notifier")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("desktop-notifications") {
		cfg.UI.DesktopNotifications = desktop
	}

	log, closer, err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.WithField("api", cfg.API.BaseURL).Info("todoai starting")

	client := api.New(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Logger: log})

	engine := scheduler.NewEngine(cfg.UI.AlarmBuffer)
	engine.Start()
	defer engine.Stop()

	systemDark := cfg.UI.DarkBackground
	if cfg.UI.DetectBackground {
		systemDark = lipgloss.HasDarkBackground()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := update.New(update.Options{
		Backend:              client,
		Scheduler:            engine,
		Notifier:             update.ExecDesktopNotifier{},
		DesktopNotifications: cfg.UI.DesktopNotifications,
		Prefs:                prefs.NewStore(cfg.UI.PrefsFile),
		AgentName:            cfg.Agent.Name,
		HistoryLimit:         cfg.API.HistoryLimit,
		Location:             cfg.Location(),
		SystemDark:           systemDark,
		Logger:               log,
		Context:              ctx,
	})
	defer model.Shutdown()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info("todoai stopped")
	return nil
}
