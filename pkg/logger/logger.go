package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

type LogLevel string

const (
	DEBUG LogLevel = "debug"
	INFO  LogLevel = "info"
	WARN  LogLevel = "warn"
	ERROR LogLevel = "error"
)

// Logger is a thin wrapper over slog that keeps snake_case event names
// and flat key/value pairs at every call site.
type Logger struct {
	l *slog.Logger
}

var (
	mu     sync.RWMutex
	global = &Logger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
)

// ParseLevel maps a config or env string onto a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init replaces the global logger. A nil writer logs to stderr so command
// output on stdout stays clean.
func Init(level LogLevel, jsonFormat bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	var h slog.Handler
	if jsonFormat {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      level.slogLevel(),
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		})
	}

	mu.Lock()
	global = &Logger{l: slog.New(h)}
	mu.Unlock()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func GetLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithContext returns a child of the global logger carrying the given pairs.
func WithContext(kv ...any) *Logger {
	return GetLogger().WithContext(kv...)
}

func (lg *Logger) WithContext(kv ...any) *Logger {
	return &Logger{l: lg.l.With(kv...)}
}

// Slog exposes the underlying slog.Logger for libraries that take one.
func (lg *Logger) Slog() *slog.Logger {
	return lg.l
}

func (lg *Logger) Debug(msg string, kv ...any) { lg.l.Debug(msg, kv...) }
func (lg *Logger) Info(msg string, kv ...any)  { lg.l.Info(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.l.Warn(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.l.Error(msg, kv...) }

// Err formats an error attribute the way tint renders it.
func Err(err error) slog.Attr {
	return tint.Err(err)
}
