package guarantee

import (
	"errors"
)

var (
	// ErrSessionNotFound covers both unknown sessions and sessions owned
	// by another merchant.
	ErrSessionNotFound = errors.New("guarantee session not found")

	// ErrSessionExpired marks a pending session past the public expiry
	// window; mapped to 410 by the public endpoints.
	ErrSessionExpired = errors.New("guarantee session expired")

	// ErrSessionNotPending is returned by resend/cancel/checkout when the
	// session already advanced.
	ErrSessionNotPending = errors.New("session is no longer pending")

	// ErrSessionNotValidated guards attended/no-show marking.
	ErrSessionNotValidated = errors.New("session is not validated")

	// ErrCheckoutNotComplete means the processor does not confirm the
	// card setup the webhook claimed.
	ErrCheckoutNotComplete = errors.New("checkout session is not complete")

	// ErrInvalidOutcome rejects unknown attendance outcomes.
	ErrInvalidOutcome = errors.New("outcome must be attended or noshow")
)
