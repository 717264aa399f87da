package schema

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by audit operations.
type ErrorKind string

// All error kinds. Each maps to one caller-visible failure class.
const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindNotFound            ErrorKind = "not_found"
	KindRateLimited         ErrorKind = "rate_limited"
	KindProviderTimeout     ErrorKind = "provider_timeout"
	KindProviderError       ErrorKind = "provider_error"
	KindProviderBadResponse ErrorKind = "provider_bad_response"
	KindStorageError        ErrorKind = "storage_error"
)

// Sentinels for errors.Is matching. Only the kind is compared.
var (
	ErrInvalidInput        = &AuditError{Kind: KindInvalidInput}
	ErrUnauthorized        = &AuditError{Kind: KindUnauthorized}
	ErrNotFound            = &AuditError{Kind: KindNotFound}
	ErrRateLimited         = &AuditError{Kind: KindRateLimited}
	ErrProviderTimeout     = &AuditError{Kind: KindProviderTimeout}
	ErrProviderError       = &AuditError{Kind: KindProviderError}
	ErrProviderBadResponse = &AuditError{Kind: KindProviderBadResponse}
	ErrStorageError        = &AuditError{Kind: KindStorageError}
)

// AuditError is the single error type of the audit pipeline.
type AuditError struct {
	Kind    ErrorKind
	Message string
	Detail  string // truncated provider body, when relevant
	Err     error
}

// NewError creates an AuditError without a cause.
func NewError(kind ErrorKind, msg string) *AuditError {
	return &AuditError{Kind: kind, Message: msg}
}

// WrapError creates an AuditError wrapping a cause.
func WrapError(kind ErrorKind, msg string, err error) *AuditError {
	return &AuditError{Kind: kind, Message: msg, Err: err}
}

// Error implements the error interface.
func (e *AuditError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *AuditError) Unwrap() error { return e.Err }

// Is matches any AuditError of the same kind.
func (e *AuditError) Is(target error) bool {
	var t *AuditError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not an AuditError.
func KindOf(err error) ErrorKind {
	var ae *AuditError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsProviderFailure reports whether err came from the audit provider.
func IsProviderFailure(err error) bool {
	switch KindOf(err) {
	case KindProviderTimeout, KindProviderError, KindProviderBadResponse:
		return true
	}
	return false
}
