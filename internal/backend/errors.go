package backend

import "errors"

// Sentinel errors for backend operations.
var (
	// ErrRequestFailed wraps transport-level failures and non-2xx
	// responses.
	ErrRequestFailed = errors.New("backend request failed")

	// ErrInvalidPayload marks a response that decoded but failed the
	// endpoint's schema. Strict endpoints discard the whole payload.
	ErrInvalidPayload = errors.New("invalid backend payload")
)
