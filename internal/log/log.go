package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu       sync.RWMutex
	logger   *slog.Logger
	levelVar = new(slog.LevelVar)
	format   = "text"
	out      io.Writer = os.Stderr
)

// initLogger lazily builds the global slog logger writing to stderr.
func initLogger() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger(out, format)
	}
	return logger
}

func newLogger(w io.Writer, f string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelVar}
	if f == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a config string onto a Level. Unknown values read as INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	levelVar.Set(toSlogLevel(l))
}

// SetFormat switches between "text" (default) and "json" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	logger = newLogger(out, format)
}

// SetOutput redirects log output; mainly used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = newLogger(out, format)
}

func Debug(msg string, kv ...any) {
	initLogger().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger().Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	initLogger().Warn(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	initLogger().Error(msg, extended...)
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
