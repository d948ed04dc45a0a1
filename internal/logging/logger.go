// Package logging is a small leveled logger with zap and logrus adapters.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/isjson/internal/config"
	"github.com/mcncl/isjson/internal/errors"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. A nil Logger is never passed around; use
// NopLogger to disable logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// New builds the logger named by cfg.Backend writing to w at cfg.Level.
func New(cfg config.LogConfig, w io.Writer) (Logger, error) {
	level := strings.ToLower(cfg.Level)
	if level == "" {
		level = "warn"
	}

	switch cfg.Backend {
	case "", "zap":
		return NewZap(w, level)
	case "logrus":
		return NewLogrus(w, level)
	case "none":
		return NopLogger{}, nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown log backend '%s'", cfg.Backend), nil)
	}
}
