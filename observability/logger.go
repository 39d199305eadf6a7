// Package observability provides the structured logger, Prometheus metrics
// and OpenTelemetry tracing shared by the project system components.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
)

// Logger is the projsys logger interface.
// Message templates use named holes: "Applied snapshot {Version} to {Project}".
type Logger interface {
	Debug(messageTemplate string, args ...any)
	DebugContext(ctx context.Context, messageTemplate string, args ...any)

	Info(messageTemplate string, args ...any)
	InfoContext(ctx context.Context, messageTemplate string, args ...any)

	Warn(messageTemplate string, args ...any)
	WarnContext(ctx context.Context, messageTemplate string, args ...any)

	Error(messageTemplate string, args ...any)
	ErrorContext(ctx context.Context, messageTemplate string, args ...any)

	// ForContext creates a child logger that attaches key=value to every event.
	ForContext(key string, value any) Logger
}

// LogLevel is the minimum level a logger emits.
type LogLevel int

const (
	// DebugLevel emits everything, including per-snapshot sync details.
	DebugLevel LogLevel = iota
	// InfoLevel emits state transitions and summaries.
	InfoLevel
	// WarnLevel emits recoverable faults.
	WarnLevel
	// ErrorLevel emits failures only.
	ErrorLevel
)

// ParseLogLevel converts a level name (debug, info, warn, error) to a LogLevel.
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "verbose", "diag", "diagnostic":
		return DebugLevel, nil
	case "", "info", "information", "normal":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error", "quiet":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

type mtlogAdapter struct {
	logger core.Logger
}

// NewLogger creates a logger writing to output at the given minimum level.
func NewLogger(output io.Writer, level LogLevel) Logger {
	opts := []mtlog.Option{
		mtlog.WithSink(sinks.NewConsoleSinkWithWriter(output)),
		mtlog.WithTimestamp(),
	}

	switch level {
	case DebugLevel:
		opts = append(opts, mtlog.Debug())
	case InfoLevel:
		opts = append(opts, mtlog.Information())
	case WarnLevel:
		opts = append(opts, mtlog.Warning())
	case ErrorLevel:
		opts = append(opts, mtlog.Error())
	}

	return &mtlogAdapter{logger: mtlog.New(opts...)}
}

// NewDefaultLogger creates a stderr logger at Info level.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, InfoLevel)
}

func (a *mtlogAdapter) Debug(messageTemplate string, args ...any) {
	a.logger.Debug(messageTemplate, args...)
}

func (a *mtlogAdapter) DebugContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.DebugContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Info(messageTemplate string, args ...any) {
	a.logger.Info(messageTemplate, args...)
}

func (a *mtlogAdapter) InfoContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.InfoContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Warn(messageTemplate string, args ...any) {
	a.logger.Warn(messageTemplate, args...)
}

func (a *mtlogAdapter) WarnContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.WarnContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Error(messageTemplate string, args ...any) {
	a.logger.Error(messageTemplate, args...)
}

func (a *mtlogAdapter) ErrorContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.ErrorContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) ForContext(key string, value any) Logger {
	return &mtlogAdapter{logger: a.logger.ForContext(key, value)}
}

type nullLogger struct{}

// NewNullLogger creates a logger that discards all output.
func NewNullLogger() Logger {
	return nullLogger{}
}

// OrNull returns l, or a null logger when l is nil.
func OrNull(l Logger) Logger {
	if l == nil {
		return nullLogger{}
	}
	return l
}

func (nullLogger) Debug(string, ...any)                         {}
func (nullLogger) DebugContext(context.Context, string, ...any) {}
func (nullLogger) Info(string, ...any)                          {}
func (nullLogger) InfoContext(context.Context, string, ...any)  {}
func (nullLogger) Warn(string, ...any)                          {}
func (nullLogger) WarnContext(context.Context, string, ...any)  {}
func (nullLogger) Error(string, ...any)                         {}
func (nullLogger) ErrorContext(context.Context, string, ...any) {}
func (n nullLogger) ForContext(string, any) Logger              { return n }
