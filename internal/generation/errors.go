package generation

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure classification. A *TerminalError matches
// the sentinel of its classification through errors.Is.
var (
	// ErrInvalidCredential is returned when the provider rejects the API key.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrRateLimited is returned when the provider throttles the caller or the
	// caller's quota is exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable is returned for transient provider outages.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyResult is returned when the provider answered without usable text.
	ErrEmptyResult = errors.New("empty result")

	// ErrInvalidInput is returned for malformed or missing request inputs,
	// including a missing API key.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknown is returned for failures that match no other classification.
	ErrUnknown = errors.New("unknown generation failure")
)

// Errors produced by model adapters.
var (
	// ErrMalformedResult indicates the provider returned text that could not be
	// decoded into the requested result shape. It is treated as an empty result.
	ErrMalformedResult = fmt.Errorf("%w: malformed result", ErrEmptyResult)

	// ErrContentBlocked indicates the provider refused the prompt on safety
	// grounds. Retrying the same prompt cannot succeed.
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrInvalidConfig is returned when a Service or adapter is misconfigured.
	ErrInvalidConfig = errors.New("invalid generation configuration")
)

// RemoteError describes a failure reported by the remote generation endpoint.
// Adapters translate their SDK errors into this type so that Classify can work
// from the numeric status and the provider's status code.
type RemoteError struct {
	// StatusCode is the HTTP status of the response, if any.
	StatusCode int
	// Status is the provider's symbolic status, e.g. "UNAVAILABLE".
	Status string
	// Message is the provider's error message.
	Message string
	// Err is the underlying SDK error.
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("remote generation error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("remote generation error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying SDK error.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// TerminalError is the single error surfaced to callers when a generation call
// fails. It is built once per request, after the retry loop has ended.
type TerminalError struct {
	// Classification is the classification of the last failed attempt.
	Classification Classification
	// Operation is the operation that failed.
	Operation Operation
	// Platform is the target platform, empty for summarize.
	Platform Platform
	// Message is safe to show to end users. It never contains the API key.
	Message string
	// Attempts is the number of remote calls that were made.
	Attempts int
	// Cause is the error of the last failed attempt.
	Cause error
}

// Error implements the error interface.
func (e *TerminalError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *TerminalError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's classification.
func (e *TerminalError) Is(target error) bool {
	return target == e.Classification.Sentinel()
}

// Category is the coarse error category reported to clients. Empty and
// unknown results are both reported as internal failures, while
// Classification keeps the precise value for logs and metrics.
func (e *TerminalError) Category() string {
	switch e.Classification {
	case EmptyResult, Unknown:
		return "internal"
	default:
		return e.Classification.String()
	}
}
