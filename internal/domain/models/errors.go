package models

import (
	"errors"
	"fmt"
)

// Request-level failures the HTTP layer maps onto status codes. Per-platform
// generation failures never surface here; they are absorbed by the
// orchestrator.
var (
	ErrNotConfigured   = errors.New("generation backend is not configured")
	ErrQuotaExceeded   = errors.New("generation quota exceeded")
	ErrInvalidURL      = errors.New("only http and https URLs are supported")
	ErrContentTooShort = errors.New("extracted content is too short; try a different URL or paste the text directly")
)

// ValidationError reports malformed client input with a message safe to return
// verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FetchError is an extraction failure caused by the origin server.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch URL: HTTP %d %s", e.StatusCode, e.Status)
}

// IsExtractionError reports whether err belongs to the extraction failure
// family (invalid URL, fetch failure, content too short).
func IsExtractionError(err error) bool {
	var fetchErr *FetchError
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrContentTooShort) ||
		errors.As(err, &fetchErr)
}

// BillingError marks payment-provider failures so they are never conflated
// with generation errors.
type BillingError struct {
	Op  string
	Err error
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("billing %s failed: %v", e.Op, e.Err)
}

func (e *BillingError) Unwrap() error {
	return e.Err
}
