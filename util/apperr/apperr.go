// Package apperr carries the error codes services hand back to controllers.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	NotFound       Code = "NOT_FOUND"
	InvalidRequest Code = "INVALID_REQUEST"
	Conflict       Code = "CONFLICT"
	Unauthorized   Code = "UNAUTHORIZED"
	Forbidden      Code = "FORBIDDEN"
	Internal       Code = "INTERNAL"
)

type codedError struct {
	code Code
	msg  string
	err  error
}

func (e *codedError) Error() string {
	if e.err != nil && e.msg == "" {
		return e.err.Error()
	}
	return e.msg
}

func (e *codedError) Unwrap() error { return e.err }
func (e *codedError) Code() Code    { return e.code }

func New(c Code, msg string) error { return &codedError{code: c, msg: msg} }

// Wrap keeps err reachable through errors.Is/As while tagging it with c.
func Wrap(c Code, msg string, err error) error {
	return &codedError{code: c, msg: msg, err: err}
}

// CodeOf extracts the code, "" for plain errors.
func CodeOf(err error) Code {
	var ce interface{ Code() Code }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Message returns the caller-safe message. Internal errors never leak detail.
func Message(err error) string {
	var ce *codedError
	if !errors.As(err, &ce) || ce.code == Internal {
		return "internal error"
	}
	if ce.msg == "" {
		return string(ce.code)
	}
	return ce.msg
}

func HTTPStatus(c Code) int {
	switch c {
	case NotFound:
		return http.StatusNotFound
	case InvalidRequest:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
