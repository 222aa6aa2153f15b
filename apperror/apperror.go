// Package apperror tags failures with the kind the HTTP layer maps to a status.
package apperror

import (
	"errors"
)

// Kind classifies a failure
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindQuery
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindQuery:
		return "QueryError"
	case KindNotFound:
		return "NotFoundError"
	case KindValidation:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// Error is a failure with a kind. Msg is the human readable prefix, Err the
// underlying cause; either may be empty.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil && e.Err.Error() != "":
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind without a cause
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first tagged error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is tagged with kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
