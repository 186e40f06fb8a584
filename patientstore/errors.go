package patientstore

import (
	"errors"
	"fmt"

	"github.com/nonibytes/patientstore/patientstore/datefilter"
)

type ErrorKind string

const (
	ErrIO            ErrorKind = "io"
	ErrSQL           ErrorKind = "sql"
	ErrSchema        ErrorKind = "schema"
	ErrQueryRejected ErrorKind = "query_rejected"
	ErrNotFound      ErrorKind = "not_found"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// FieldError reports an invalid patient field.
func FieldError(field, msg string) *Error {
	return &Error{Kind: ErrSchema, Field: field, Message: msg}
}

// QueryRejectedError wraps a birth date filter the engine refused. The
// *datefilter.Error stays reachable through errors.As.
func QueryRejectedError(cause error) *Error {
	return &Error{Kind: ErrQueryRejected, Message: "invalid birth date filter", Cause: cause}
}

func NotFoundError(id string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("patient not found: %s", id)}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// FilterError returns the rejected filter token behind err, if any.
func FilterError(err error) (*datefilter.Error, bool) {
	return datefilter.AsError(err)
}
