package throttle

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the throttler.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrCancelled is returned when the context is cancelled before or
	// during a call. It always wraps the underlying context error.
	ErrCancelled = errors.New("call cancelled")

	// ErrBudgetExhausted is returned when the shared platform budget is
	// critical and the call was never issued.
	ErrBudgetExhausted = errors.New("call blocked: platform budget critical")
)

// ErrorClass represents a classification of outbound call failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassThrottled represents 429 responses from the platform.
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// RemoteError is the uniform failure for error responses from the remote
// platform. It carries the endpoint, the correlation mark of the logical
// call, and the serialized error payload for diagnostics.
type RemoteError struct {
	Endpoint   string
	Mark       string
	StatusCode int
	Class      ErrorClass
	Payload    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("platform %s error (status %d) endpoint=%s mark=%s: %s",
		e.Class, e.StatusCode, e.Endpoint, e.Mark, e.Payload)
}

// TransportError wraps an underlying network/transport failure with the
// endpoint and correlation mark of the failed call.
type TransportError struct {
	Endpoint string
	Mark     string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error endpoint=%s mark=%s: %v", e.Endpoint, e.Mark, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassifyStatus categorizes an HTTP status code.
func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassThrottled
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry determines if an error class should be retried.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx errors are not retried; the request will not get better
		return false
	case ErrorClassServer:
		return true
	case ErrorClassThrottled:
		return true
	case ErrorClassNetwork:
		return true
	default:
		return false
	}
}
