// Package direrr holds the sentinel errors shared across the dictionary
// engine. Library code wraps these with fmt.Errorf("...: %w", ...) rather
// than inventing ad-hoc error strings, so callers can use errors.Is.
package direrr

import "errors"

// Sentinel errors for common cases.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrStoreClosed   = errors.New("store unavailable")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingMainDictionary is returned when FindTerms is called in
	// merge mode without a MainDictionary configured. This is a
	// programming-error kind: the caller is expected to validate options
	// before calling, so the engine fails fast rather than guessing.
	ErrMissingMainDictionary = errors.New("merge mode requires main dictionary")
)
