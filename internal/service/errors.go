package service

import "errors"

// Service errors. The API layer maps these to HTTP status codes.
var (
	// ErrQuotaExceeded indicates the user has used every generation in the
	// current month. No model call was made.
	ErrQuotaExceeded = errors.New("monthly generation quota reached")

	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a login with an unknown email or a wrong
	// password. Both cases return this same error.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStoredKeyUnreadable indicates the sealed API key on a profile could
	// not be opened, usually after the encryption secret was rotated.
	ErrStoredKeyUnreadable = errors.New("stored API key cannot be decrypted")
)
