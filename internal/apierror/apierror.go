// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "net/http"

// Kind classifies a business failure so handlers can map it to an HTTP status
// without string matching.
type Kind int

const (
	// KindInternal is the fallback for errors the services did not classify.
	KindInternal Kind = iota
	// KindValidation — malformed or incomplete input, rejected before any side effect.
	KindValidation
	// KindNotFound — the referenced entity does not exist.
	KindNotFound
	// KindDenied — a business rule forbids an otherwise well-formed request.
	KindDenied
	// KindExternal — the fiscal gateway was unreachable or rejected the request.
	KindExternal
	// KindConsistency — a partial write was detected and compensated (or not).
	KindConsistency
)

// Error is the typed error the service layer returns. Detail is always a
// specific, user-facing message; cause carries diagnostics for the logs.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.cause }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindDenied:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

func NotFound(detail string) *Error { return &Error{Kind: KindNotFound, Detail: detail} }

func Denied(detail string) *Error { return &Error{Kind: KindDenied, Detail: detail} }

// External wraps a fiscal-gateway failure keeping the original cause attached.
func External(detail string, cause error) *Error {
	return &Error{Kind: KindExternal, Detail: detail, cause: cause}
}

// Consistency marks a detected partial write. The cause is the write error
// that interrupted the sequence.
func Consistency(detail string, cause error) *Error {
	return &Error{Kind: KindConsistency, Detail: detail, cause: cause}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
