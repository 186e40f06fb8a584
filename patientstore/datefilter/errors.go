package datefilter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a filter token was rejected.
type ErrorKind string

const (
	ErrTokenTooShort ErrorKind = "token_too_short"
	ErrMalformedDate ErrorKind = "malformed_date"
	ErrUnknownPrefix ErrorKind = "unknown_prefix"
)

// Error reports a rejected filter token. Token is the raw (trimmed) input.
type Error struct {
	Kind    ErrorKind
	Token   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Token != "" {
		base = fmt.Sprintf("%s (token=%q)", base, e.Token)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func tokenTooShort(token string) *Error {
	return &Error{
		Kind:    ErrTokenTooShort,
		Token:   token,
		Message: fmt.Sprintf("filter must be at least %d characters (2 for the prefix, 4 for the year)", MinTokenLen),
	}
}

func malformedDate(value string, cause error) *Error {
	return &Error{Kind: ErrMalformedDate, Message: fmt.Sprintf("unsupported date format %q", value), Cause: cause}
}

func unknownPrefix(p Prefix) *Error {
	return &Error{Kind: ErrUnknownPrefix, Message: fmt.Sprintf("unknown comparison prefix %q", string(p))}
}

// withToken returns a copy of err carrying the offending token.
func withToken(err error, token string) error {
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Token = token
		return &cp
	}
	return err
}

// IsKind reports whether err is a filter error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError extracts the filter error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
