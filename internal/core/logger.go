package core

type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the logging surface used by directories and the reconciler.
// Args are slog style key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	SetLevel(level LogLevel)
}

// LogEntry is a message captured by RecordingLogger.
type LogEntry struct {
	Level LogLevel
	Msg   string
	Args  []any
}

// RecordingLogger keeps every message in memory. Tests use it to assert on
// what a run reported.
type RecordingLogger struct {
	Entries *[]LogEntry
	args    []any
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{Entries: &[]LogEntry{}}
}

func (r *RecordingLogger) add(level LogLevel, msg string, args []any) {
	all := append(append([]any{}, r.args...), args...)
	*r.Entries = append(*r.Entries, LogEntry{Level: level, Msg: msg, Args: all})
}

func (r *RecordingLogger) Trace(msg string, args ...any) { r.add(LevelTrace, msg, args) }
func (r *RecordingLogger) Debug(msg string, args ...any) { r.add(LevelDebug, msg, args) }
func (r *RecordingLogger) Info(msg string, args ...any)  { r.add(LevelInfo, msg, args) }
func (r *RecordingLogger) Warn(msg string, args ...any)  { r.add(LevelWarn, msg, args) }
func (r *RecordingLogger) Error(msg string, args ...any) { r.add(LevelError, msg, args) }
func (r *RecordingLogger) SetLevel(LogLevel)             {}

func (r *RecordingLogger) With(args ...any) Logger {
	return &RecordingLogger{Entries: r.Entries, args: append(append([]any{}, r.args...), args...)}
}

// Messages returns the recorded messages at the given level.
func (r *RecordingLogger) Messages(level LogLevel) []string {
	var out []string
	for _, e := range *r.Entries {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}
