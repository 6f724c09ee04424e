// Package observability carries the ambient logging, metrics, and health
// surfaces, grounded on the teacher's internal/single/monitoring/logger.go,
// root metrics.go, and handleHealth.
package observability

import (
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel mirrors the teacher's internal/single/types.LogLevel, inlined
// here so this package has no dependency on that (unused in this domain)
// teacher package.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// LogFormat selects console (human-readable) or JSON output.
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatPretty LogFormat = "pretty"
)

// LoggerConfig holds logger configuration, grounded on the teacher's
// monitoring.LoggerConfig.
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
}

// NewLogger builds a zerolog.Logger per config, same level/format switch
// and timestamp+caller+service field shape as the teacher's
// monitoring.NewLogger.
func NewLogger(config LoggerConfig) zerolog.Logger {
	var output io.Writer = os.Stdout

	var level zerolog.Level
	switch config.Level {
	case LogLevelDebug:
		level = zerolog.DebugLevel
	case LogLevelInfo:
		level = zerolog.InfoLevel
	case LogLevelWarn:
		level = zerolog.WarnLevel
	case LogLevelError:
		level = zerolog.ErrorLevel
	case LogLevelFatal:
		level = zerolog.FatalLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.Format == LogFormatPretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "bankrpcd").
		Logger()
}

// LogErrorWithStack logs an error together with a captured stack trace,
// for unexpected failures in the listener or fan-out workers.
func LogErrorWithStack(logger zerolog.Logger, err error, msg string, fields map[string]any) {
	event := logger.Error().Err(err).Str("stack_trace", string(debug.Stack()))
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

// InitGlobalLogger installs logger as the package-level zerolog.Logger
// used by libraries that log through the global `log` package.
func InitGlobalLogger(config LoggerConfig) {
	log.Logger = NewLogger(config)
}
