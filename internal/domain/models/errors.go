package models

import "errors"

// ErrorKind classifies domain failures for callers that need to map them
// to a transport-level response without string matching.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindConflict          ErrorKind = "CONFLICT"
	KindUnknown           ErrorKind = "UNKNOWN"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrency conflict")
)

// KindOf maps an error back to its domain kind. Errors produced by this
// module wrap one of the sentinels above with fmt.Errorf("%w: ...").
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindUnknown
	}
}
