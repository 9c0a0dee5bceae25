package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus tracks where an account sits in the onboarding lifecycle.
type UserStatus string

const (
	// UserPending is the initial status after an admin creates the account.
	UserPending UserStatus = "pending"
	// UserSignupPending means the user has been invited but has not set a password.
	UserSignupPending UserStatus = "signup_pending"
	// UserApprovalPending means the user completed signup and awaits review.
	UserApprovalPending UserStatus = "approval_pending"
	// UserActive is a fully onboarded member.
	UserActive UserStatus = "active"
	// UserDisabled is terminal; only an administrator can set it and no
	// further activation links may be issued.
	UserDisabled UserStatus = "disabled"
)

// CanTransitionTo reports whether moving to the target status is allowed.
// Disabled is terminal.
func (s UserStatus) CanTransitionTo(target UserStatus) bool {
	if s == UserDisabled {
		return false
	}
	switch target {
	case UserPending, UserSignupPending, UserApprovalPending, UserActive, UserDisabled:
		return true
	}
	return false
}

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents the account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash *string
	Role         string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the user has completed the credential step of
// signup.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if the account is fully onboarded.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// IsDisabled returns true if the account has been disabled by an admin.
func (u *User) IsDisabled() bool {
	return u.Status == UserDisabled
}

// DerivedStatus maps the stored status to what admins should see, matching
// how the dashboard groups accounts: users without a password are still in
// signup, users whose profile awaits review are approval pending.
func (u *User) DerivedStatus(profile *MemberProfile) UserStatus {
	if u.Status == UserDisabled || u.Status == UserActive {
		return u.Status
	}
	if !u.HasPassword() {
		return UserSignupPending
	}
	if profile != nil && profile.Status == ProfileApprovalPending {
		return UserApprovalPending
	}
	return u.Status
}
