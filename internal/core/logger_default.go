package core

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"
)

// DefaultLogger prints human readable lines through pterm and keeps a
// structured slog record of every message on the same writer.
type DefaultLogger struct {
	level   LogLevel
	handler *slog.Logger
	output  io.Writer
}

func NewDefaultLogger(output io.Writer, level LogLevel) *DefaultLogger {
	handler := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}))

	return &DefaultLogger{
		level:   level,
		handler: handler,
		output:  output,
	}
}

// SlogLevel maps the level to the closest slog level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelTrace, LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *DefaultLogger) Trace(msg string, args ...any) {
	if l.level <= LevelTrace {
		pterm.Debug.WithWriter(l.output).Println("TRACE: " + msg)
		l.handler.Debug(msg, args...)
	}
}

func (l *DefaultLogger) Debug(msg string, args ...any) {
	if l.level <= LevelDebug {
		pterm.Debug.WithWriter(l.output).Println(msg)
		l.handler.Debug(msg, args...)
	}
}

func (l *DefaultLogger) Info(msg string, args ...any) {
	if l.level <= LevelInfo {
		pterm.Info.WithWriter(l.output).Println(msg)
		l.handler.Info(msg, args...)
	}
}

func (l *DefaultLogger) Warn(msg string, args ...any) {
	if l.level <= LevelWarn {
		pterm.Warning.WithWriter(l.output).Println(msg)
		l.handler.Warn(msg, args...)
	}
}

func (l *DefaultLogger) Error(msg string, args ...any) {
	if l.level <= LevelError {
		pterm.Error.WithWriter(l.output).Println(msg)
		l.handler.Error(msg, args...)
	}
}

func (l *DefaultLogger) With(args ...any) Logger {
	return &DefaultLogger{
		level:   l.level,
		handler: l.handler.With(args...),
		output:  l.output,
	}
}

// SetLevel changes the pterm threshold. The slog handler keeps the level it
// was created with, so callers that lower the level should build a new logger.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level = level
}

// LevelFromVerbosity maps a -v count to a level.
func LevelFromVerbosity(count int) LogLevel {
	switch {
	case count >= 2:
		return LevelTrace
	case count == 1:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
