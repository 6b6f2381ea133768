// Package logger builds the logrus logger shared by the client binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logger writing to w. Unknown levels fall back to info and
// unknown formats to text with full timestamps.
func New(level, format string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	return log
}

// Init opens path for appending and returns a logger writing to it. The TUI
// owns stdout, so file output is the norm; an empty path logs to stderr.
// The returned closer must be called on shutdown.
func Init(level, format, path string) (*logrus.Logger, io.Closer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return New(level, format, os.Stderr), io.NopCloser(nil), nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, format, f), f, nil
}

// Discard is a logger that drops everything, for tests and defaults.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
