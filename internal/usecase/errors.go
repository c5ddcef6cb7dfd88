package usecase

import "errors"

// Kind is the stable error class callers map onto transport codes.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf classifies any error; plain errors count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: msg}
}

// NotPermitted carries a human-readable denial reason. Callers must
// surface it as an authorization failure, not a generic error.
func NotPermitted(reason string) *Error {
	return &Error{Kind: KindAuthorization, Code: "NOT_PERMITTED", Message: reason}
}

// NotFound covers both truly absent entities and entities hidden from
// the actor (soft-deleted, out of scope); the two are deliberately
// indistinguishable to avoid leaking existence.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: what + " not found"}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: msg, cause: cause}
}
