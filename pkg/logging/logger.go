// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Search request construction (cursor, location batch, page size)
//   - Catalog cache operations (hit/miss, key, TTL)
//   - Per-page fetch progress
//
// Info: Normal operation events
//   - Collection run start/finish with order counts
//   - Budget state updates (healthy)
//   - Successful retries
//
// Warn: Warning conditions that don't prevent operation
//   - Budget warnings (throttling active)
//   - Retry attempts and backoff
//   - Unmatched catalog references dropped during enrichment
//   - Catalog cache errors (fallback to direct lookup)
//
// Error: Error conditions requiring attention
//   - Failed requests (after retries)
//   - Critical budget blocks
//   - Aborted collection runs
//
// Context Fields:
//   - endpoint: remote platform endpoint path
//   - mark: correlation mark for one logical call and its retries
//   - status_code: HTTP status code
//   - duration: request duration
//   - error_class: error classification (client, server, throttled, network)
//   - batch: location batch index within a run
//   - requests_remaining: remote platform request budget
