package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandeepkv93/todoai/internal/config"
	"github.com/sandeepkv93/todoai/internal/logger"
	"github.com/sandeepkv93/todoai/internal/mockserver"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todoai-mockd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		addr       string
		logLevel   string
	)
	flagSet := pflag.NewFlagSet("todoai-mockd", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides TODOAI_MOCK_ADDR)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Mock.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// The mock runs in a plain terminal, so it logs to stderr.
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	srv := &http.Server{
		Addr: cfg.Mock.Addr,
		Handler: mockserver.New(mockserver.Options{
			EventDelay: cfg.Mock.EventDelay,
			Quota:      cfg.Mock.Quota,
			Logger:     log,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Mock.Addr).Infof("mock backend listening, sign in as %s / %s", mockserver.DemoUsername, mockserver.DemoPassword)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("mock backend stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
