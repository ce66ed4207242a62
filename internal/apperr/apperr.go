// Package apperr holds the error kinds a lookup request can end in and
// the HTTP status each one maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when the caller's API key is missing,
// unknown, or inactive. Callers must not learn which of those it was.
var ErrUnauthorized = errors.New("unauthorized")

// NotFoundError means the query ran and matched no rows.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound builds a NotFoundError with a resource specific message.
func NotFound(msg string) error { return &NotFoundError{Message: msg} }

// InvalidError is a malformed request parameter.
type InvalidError struct {
	Param string
}

func (e *InvalidError) Error() string { return "invalid parameter " + e.Param }

// Invalid builds an InvalidError for the named parameter.
func Invalid(param string) error { return &InvalidError{Param: param} }

// UpstreamError wraps a failure of a collaborator: secret resolution,
// query execution, or the network in between.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError. A nil err stays nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// Status maps err to the HTTP status code of its kind. Unknown errors are
// treated as upstream failures.
func Status(err error) int {
	var nf *NotFoundError
	var inv *InvalidError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &inv):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
