// Package errs defines the error kinds surfaced by orgchart operations.
//
// BadRequest and NotFound errors travel to the caller unchanged. Every other failure is
// logged where it happens and replaced with an Internal error whose message carries no
// backend detail; the cause stays reachable through Unwrap for logging and tests.
package errs

import (
	"github.com/go-faster/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// GenericMessage is the only message an Internal error created by the core exposes.
const GenericMessage = "An unexpected error occurred"

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Internal(msg string, cause error) error {
	if msg == "" {
		msg = GenericMessage
	}
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain. Errors outside the
// taxonomy are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsBadRequest(err error) bool {
	return err != nil && KindOf(err) == KindBadRequest
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// Passthrough reports whether err must reach the caller unchanged.
func Passthrough(err error) bool {
	return IsBadRequest(err) || IsNotFound(err)
}

// Message returns the message of the outermost *Error in err's chain, or GenericMessage
// when err is outside the taxonomy.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return GenericMessage
}
