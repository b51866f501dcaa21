package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const (
	CodeInternal     = "internal"
	CodeNotFound     = "not_found"
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeConflict     = "conflict"
	CodeNotAllowed   = "method_not_allowed"
	CodeTooLarge     = "request_too_large"
)

// Error represents a structured application error.
type Error struct {
	Code    string
	Status  int
	Message string
	Cause   error
	// Fields carries per-field validation messages, keyed by form field.
	Fields map[string]string
}

// New creates a new Error.
func New(code string, status int, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap returns the root cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithFields attaches field messages and returns the same error.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

// BadRequest reports a malformed or unsupported request.
func BadRequest(message string, cause error) *Error {
	return New(CodeBadRequest, http.StatusBadRequest, message, cause)
}

// Validation reports form input that failed validation.
func Validation(message string, fields map[string]string) *Error {
	return New(CodeValidation, http.StatusBadRequest, message, nil).WithFields(fields)
}

// Unauthorized reports a missing identity.
func Unauthorized(message string, cause error) *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, message, cause)
}

// Forbidden reports an identity that may not perform the action.
func Forbidden(message string, cause error) *Error {
	return New(CodeForbidden, http.StatusForbidden, message, cause)
}

// NotFound reports a missing resource.
func NotFound(message string, cause error) *Error {
	return New(CodeNotFound, http.StatusNotFound, message, cause)
}

// Conflict reports a uniqueness violation.
func Conflict(message string, cause error) *Error {
	return New(CodeConflict, http.StatusConflict, message, cause)
}

// TooLarge reports a request body over the configured limit.
func TooLarge(message string, cause error) *Error {
	return New(CodeTooLarge, http.StatusRequestEntityTooLarge, message, cause)
}

// Internal reports an unexpected failure.
func Internal(message string, cause error) *Error {
	return New(CodeInternal, http.StatusInternalServerError, message, cause)
}

// As extracts an *Error if present.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Redirect is a control outcome, not a failure: the request must be answered
// with a redirect and no further handler logic may run.
type Redirect struct {
	Location string
	Status   int
}

// RedirectTo builds a See Other redirect.
func RedirectTo(location string) *Redirect {
	return &Redirect{Location: location, Status: http.StatusSeeOther}
}

// LoginRedirect sends the client to loginPath carrying redirectTo as a query parameter.
func LoginRedirect(loginPath, redirectTo string) *Redirect {
	query := url.Values{}
	query.Set("redirectTo", redirectTo)
	return RedirectTo(loginPath + "?" + query.Encode())
}

func (r *Redirect) Error() string {
	return "redirect to " + r.Location
}

// AsRedirect extracts a *Redirect if present.
func AsRedirect(err error) (*Redirect, bool) {
	if err == nil {
		return nil, false
	}
	var redirect *Redirect
	if errors.As(err, &redirect) {
		return redirect, true
	}
	return nil, false
}
