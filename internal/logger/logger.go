package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
	mu            sync.RWMutex
)

// Init initializes the default logger with a JSON writer on os.Stderr at info level.
// It ensures that the logger is initialized only once; use Configure to change it afterwards.
func Init() {
	once.Do(func() {
		mu.Lock()
		defaultLogger = newLogger(os.Stderr, "info", "json")
		mu.Unlock()
	})
}

// Configure replaces the default logger. format is "json" or "text" (human-readable console
// output); unknown levels fall back to info.
func Configure(level, format string) {
	ConfigureOutput(os.Stderr, level, format)
}

// ConfigureOutput is Configure with an explicit destination.
func ConfigureOutput(w io.Writer, level, format string) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLogger(w, level, format)
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "text") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Get returns the initialized default logger.
// It calls Init() to ensure the logger is ready before returning it.
func Get() *zerolog.Logger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// Info logs an informational message. args are alternating key/value pairs.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs an error message, attaching err when it is non-nil.
func Error(msg string, err error, args ...any) {
	Get().Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}
