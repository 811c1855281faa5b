package apperr

import (
	"errors"
	"fmt"
)

// Kind tags an error with the failure class callers branch on.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindClassification
	KindNetwork
	KindAuth
	KindRateLimit
	KindMalformed
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindClassification:
		return "classification"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindMalformed:
		return "malformed"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned by every stage of an invocation.
type Error struct {
	Kind   Kind
	Op     string
	Status int // HTTP status from the completion endpoint, 0 if none
	Err    error
}

// New builds a tagged error. Err may be nil.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a tagged error from a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request may succeed.
// Only transport failures and rate limiting qualify.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindRateLimit
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err carries a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}

// ExitCode maps err onto the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindInput:
		return 2
	case KindAuth, KindMalformed:
		return 3
	case KindNetwork, KindRateLimit:
		return 4
	case KindOutput:
		return 5
	case KindClassification:
		return 6
	default:
		return 1
	}
}
