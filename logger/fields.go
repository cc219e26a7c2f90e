package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Runs
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Documents
	FieldDocument   = "document"
	FieldIdentifier = "identifier"
	FieldFamily     = "family"
	FieldSeries     = "series"
	FieldLayout     = "layout"

	// Change detection
	FieldVerdict = "verdict"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorKind = "error_kind"

	// Counts
	FieldCount      = "count"
	FieldTotalCount = "total_count"

	// Files and repositories
	FieldPath   = "path"
	FieldBranch = "branch"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	componentKey contextKey = "logger_component"
)

// WithRunID adds an extraction run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns base enriched with the fields carried by ctx.
// A nil base falls back to the global Logger.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Runner struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewRunner() *Runner {
//	    return &Runner{
//	        logger: logger.ComponentLogger("pipeline"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil. Constructors use it so
// callers may pass nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
