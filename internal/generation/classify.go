package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Classification is the failure category assigned to a failed attempt.
type Classification int

// Failure classifications. The zero value is Unknown.
const (
	Unknown Classification = iota
	InvalidCredential
	RateLimited
	ServiceUnavailable
	EmptyResult
	InvalidInput
)

// String returns the snake_case name used in logs, metrics and API responses.
func (c Classification) String() string {
	switch c {
	case InvalidCredential:
		return "invalid_credential"
	case RateLimited:
		return "rate_limited"
	case ServiceUnavailable:
		return "service_unavailable"
	case EmptyResult:
		return "empty_result"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Terminal reports whether a failure of this class ends the call without retry.
func (c Classification) Terminal() bool {
	return c == InvalidCredential || c == InvalidInput
}

// Sentinel returns the package sentinel error for the classification.
func (c Classification) Sentinel() error {
	switch c {
	case InvalidCredential:
		return ErrInvalidCredential
	case RateLimited:
		return ErrRateLimited
	case ServiceUnavailable:
		return ErrServiceUnavailable
	case EmptyResult:
		return ErrEmptyResult
	case InvalidInput:
		return ErrInvalidInput
	default:
		return ErrUnknown
	}
}

// Message fragments, matched case-insensitively against the error text.
var (
	credentialPhrases = []string{
		"api key not valid",
		"api_key_invalid",
		"invalid api key",
		"api key expired",
		"permission denied",
	}
	unavailablePhrases = []string{
		"service unavailable",
		"overloaded",
		"internal error",
		"deadline exceeded",
	}
	rateLimitPhrases = []string{
		"rate limit",
		"quota exceeded",
		"too many requests",
		"resource exhausted",
	}
	invalidInputPhrases = []string{
		"bad request",
		"invalid argument",
	}
)

// Classify maps a raw attempt error to exactly one Classification. It is a
// pure function of err: the same error always yields the same class.
//
// Rules are evaluated in order and the first match wins. Credential failures
// are checked first because providers often report a bad key as a 400.
func Classify(err error) Classification {
	if err == nil {
		return Unknown
	}

	var code int
	var status string
	var remote *RemoteError
	if errors.As(err, &remote) {
		code = remote.StatusCode
		status = strings.ToUpper(remote.Status)
	}
	msg := strings.ToLower(err.Error())

	switch {
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		status == "UNAUTHENTICATED",
		status == "PERMISSION_DENIED",
		errors.Is(err, ErrInvalidCredential),
		containsAny(msg, credentialPhrases):
		return InvalidCredential

	case errors.Is(err, ErrEmptyResult):
		return EmptyResult

	case code == http.StatusInternalServerError,
		code == http.StatusBadGateway,
		code == http.StatusServiceUnavailable,
		code == http.StatusGatewayTimeout,
		status == "UNAVAILABLE",
		status == "INTERNAL",
		status == "DEADLINE_EXCEEDED",
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrServiceUnavailable),
		containsAny(msg, unavailablePhrases):
		return ServiceUnavailable

	case code == http.StatusTooManyRequests,
		status == "RESOURCE_EXHAUSTED",
		errors.Is(err, ErrRateLimited),
		containsAny(msg, rateLimitPhrases):
		return RateLimited

	case code == http.StatusBadRequest,
		status == "INVALID_ARGUMENT",
		status == "FAILED_PRECONDITION",
		errors.Is(err, ErrContentBlocked),
		errors.Is(err, ErrInvalidInput),
		containsAny(msg, invalidInputPhrases):
		return InvalidInput
	}

	return Unknown
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
