// Package errors provides error handling for azsku.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping and structured details from one import, and defines the
// extraction failure taxonomy:
//
//   - ErrGrammarViolation: a naming code or table shape does not match the expected structure
//   - ErrSchemaClosure: required capability keys are missing or unknown keys remain
//   - ErrResolution: no family or companion document could be found
//   - ErrLayout: a recoverable layout ambiguity (malformed front matter)
//
// Usage:
//
//	if !match {
//	    return errors.Wrapf(errors.ErrGrammarViolation, "variant code %q", token)
//	}
//
//	if errors.IsExtractionFailure(err) {
//	    // isolate the failing document, keep going
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// Details and hints
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Wrap them with context; test with Is.
var (
	// ErrGrammarViolation: input does not match the expected naming or table structure
	ErrGrammarViolation = New("grammar violation")

	// ErrSchemaClosure: capability keys missing or left over after canonicalization
	ErrSchemaClosure = New("schema closure violation")

	// ErrResolution: a referenced family or companion document does not exist
	ErrResolution = New("resolution failure")

	// ErrLayout: recoverable layout ambiguity, repaired once and retried
	ErrLayout = New("layout ambiguity")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrConflict indicates a resource conflict (e.g., duplicate names)
	ErrConflict = New("resource conflict")
)

// IsExtractionFailure reports whether err belongs to the per-document failure
// taxonomy. Such failures are isolated to one document; anything else
// (I/O, database) is an infrastructure failure.
func IsExtractionFailure(err error) bool {
	return err != nil && IsAny(err, ErrGrammarViolation, ErrSchemaClosure, ErrResolution, ErrLayout)
}

// Kind returns a short label for the taxonomy class of err, used in logs and
// run reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrGrammarViolation):
		return "grammar"
	case Is(err, ErrSchemaClosure):
		return "schema_closure"
	case Is(err, ErrResolution):
		return "resolution"
	case Is(err, ErrLayout):
		return "layout"
	case Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewGrammarViolation creates a grammar violation with a formatted message
func NewGrammarViolation(format string, args ...interface{}) error {
	return Wrapf(ErrGrammarViolation, format, args...)
}

// NewSchemaClosure creates a schema closure violation with a formatted message
func NewSchemaClosure(format string, args ...interface{}) error {
	return Wrapf(ErrSchemaClosure, format, args...)
}

// NewResolutionError creates a resolution failure with a formatted message
func NewResolutionError(format string, args ...interface{}) error {
	return Wrapf(ErrResolution, format, args...)
}
