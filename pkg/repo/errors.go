package repo

import (
	"errors"
	"fmt"
)

// ErrKind discriminates the repo package's error taxonomy. Callers that
// need to branch on failure type should use errors.As against *Error
// and switch on Kind, not string-match Error().
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidRef
	KindAmbiguousRef
	KindDetachedHead
	KindStorage
	KindCorrupted
	KindInvalidInput
)

func (k ErrKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidRef:
		return "invalid_ref"
	case KindAmbiguousRef:
		return "ambiguous_ref"
	case KindDetachedHead:
		return "detached_head"
	case KindStorage:
		return "storage"
	case KindCorrupted:
		return "corrupted"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every exported repo operation returns
// on failure. It wraps an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repo: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("repo: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapErr(kind ErrKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind ErrKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
