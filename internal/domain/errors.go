package domain

import (
	"errors"
	"fmt"
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserDisabled      = errors.New("account has been disabled")
	ErrAlreadyActivated  = errors.New("account is already activated")
)

// Activation link errors
var (
	ErrLinkNotFound          = errors.New("activation link not found")
	ErrLinkAlreadyUsed       = errors.New("activation link already used")
	ErrLinkExpired           = errors.New("activation link expired")
	ErrLinkInactive          = errors.New("activation link deactivated")
	ErrConcurrentConsumption = errors.New("activation link consumed by a concurrent request")
	ErrTokenCollision        = errors.New("activation token collision")
	ErrTooSoon               = errors.New("activation link was recently issued, wait before requesting another")
)

// Profile errors
var (
	ErrProfileNotFound = errors.New("member profile not found")
)

// Delivery errors
var (
	ErrRefreshFailed    = errors.New("access token refresh failed")
	ErrProviderRejected = errors.New("mail provider rejected the message")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ErrInvalidTransition is the sentinel matched by errors.Is for any
// InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid state transition")

// InvalidTransitionError reports a lifecycle operation attempted from the
// wrong state, naming the state it required and the state it found.
type InvalidTransitionError struct {
	Entity   string
	Required string
	Actual   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid state transition: requires %q, currently %q", e.Entity, e.Required, e.Actual)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ErrDeliveryFailed is the sentinel matched by errors.Is for any
// DeliveryError.
var ErrDeliveryFailed = errors.New("delivery failed on both channels")

// DeliveryError means both the primary channel and the fallback failed. It
// carries both causes so operators can see the full picture.
type DeliveryError struct {
	Primary  error
	Fallback error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

func (e *DeliveryError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}
