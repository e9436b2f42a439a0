package util

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	stdlog "log"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// initialized is set by InitializeLogger. Until then component loggers are
// disabled so library use stays silent.
var initialized atomic.Bool

// zerologLevel maps a LogLevel onto zerolog; unknown values fall back to info
func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitializeLogger sets up the global logger. Output goes to w through a
// console writer; nil means stderr so stdout stays free for command output.
func InitializeLogger(level LogLevel, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerologLevel(level))

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}

	ctx := zerolog.New(output).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	initialized.Store(true)
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component.
// It is disabled until InitializeLogger has run.
func GetLogger(component string) zerolog.Logger {
	logger := log.With().Str("component", component).Logger()
	if !initialized.Load() {
		return logger.Level(zerolog.Disabled)
	}
	return logger
}

// zerologWriter wraps zerolog to implement io.Writer for stdlog
type zerologWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	w.logger.WithLevel(w.level).Msg(msg)
	return len(p), nil
}

// NewLogLogger returns a stdlog.Logger that routes every line to zerolog at lvl.
// Used for libraries that only accept *log.Logger (go-fuse).
func NewLogLogger(component string, lvl LogLevel) *stdlog.Logger {
	logger := GetLogger(component)
	writer := zerologWriter{logger: logger, level: zerologLevel(lvl)}
	return stdlog.New(writer, "", 0)
}
