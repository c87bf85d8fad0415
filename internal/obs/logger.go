// Package obs provides the production implementations of the service's
// observability contracts: charmbracelet logging and Prometheus metrics.
package obs

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"ifad/internal/core"
)

var _ core.Logger = (*Logger)(nil)

// Logger adapts a charmbracelet logger to the core.Logger contract.
type Logger struct {
	l *log.Logger
}

// NewLogger builds a stderr logger with the supplied minimum level
// ("debug", "info", "warn", "error"; empty defaults to info).
func NewLogger(level string) *Logger {
	return NewLoggerWithWriter(os.Stderr, level)
}

// NewLoggerWithWriter builds a logger emitting to w. Used by tests to
// capture output.
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	logger := log.New(w)
	logger.SetLevel(parseLevel(level))
	return &Logger{l: logger}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.l.Debug(msg, keyvals...) }

func (l *Logger) Info(msg string, keyvals ...any) { l.l.Info(msg, keyvals...) }

func (l *Logger) Warn(msg string, keyvals ...any) { l.l.Warn(msg, keyvals...) }

func (l *Logger) Error(msg string, keyvals ...any) { l.l.Error(msg, keyvals...) }
