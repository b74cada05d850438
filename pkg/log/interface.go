// Package log provides structured logging for conformal prediction
// operations.
//
// It defines a minimal, slog-compatible Logger interface so the backend can
// be swapped without touching call sites. The default backend is zerolog
// (see zerolog.go); a slog setup helper exists for applications that prefer
// routing everything through log/slog (see slog.go). Estimators obtain
// named loggers through GetLoggerWithName and attach the attribute keys
// defined in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("regression.split").With(
//	    log.ModelNameKey, "SplitConformalRegressor",
//	)
//	logger.Info("conformalization finished",
//	    log.OperationKey, log.OperationConformalize,
//	    log.CalibrationSizeKey, 200,
//	)

package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. Implementations must tolerate an
// error value in value position and are encouraged to render it with its
// structured form when one is available. With returns a derived logger that
// includes the given fields in every subsequent record.
type Logger interface {
	// Debug logs detailed diagnostic information, typically disabled in
	// production.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	//
	// Example:
	//
	//	logger.Info("intervals computed",
	//	    log.LevelsKey, []float64{0.95, 0.68},
	//	    log.DurationMsKey, 12,
	//	)
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not stop the
	// operation, such as a confidence level requiring a clamped quantile
	// rank.
	Warn(msg string, fields ...any)

	// Error logs failures that should be investigated. When the first
	// field is a bare error value it is attached under the standard error
	// key so backends can extract stack traces.
	Error(msg string, fields ...any)

	// With returns a new Logger that includes fields in all future records.
	//
	// Example:
	//
	//	ctxLogger := logger.With(log.ScoreKey, "gamma")
	//	ctxLogger.Info("calibration started") // carries conformal.score=gamma
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive field construction for records that would
	// be dropped.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. The package holds one
// default provider (zerolog-backed); tests inject a TestLoggerProvider via
// SetLoggerProvider to capture estimator logs.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created by this provider.
	SetLevel(level Level)
}
