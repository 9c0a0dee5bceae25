package auth

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned for addresses that cannot receive an invitation.
var ErrInvalidEmail = errors.New("invalid email address")

const maxEmailLength = 254 // RFC 5321

// ValidateEmail checks that an address is plausible enough to invite.
func ValidateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
