package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStatus tracks a member profile through the approval workflow.
type ProfileStatus string

const (
	ProfileSignupPending   ProfileStatus = "signup_pending"
	ProfileApprovalPending ProfileStatus = "approval_pending"
	ProfileApproved        ProfileStatus = "approved"
	ProfileRejected        ProfileStatus = "rejected"
)

// CanTransitionTo reports whether the workflow allows moving to the target
// status. Rejected profiles may be resubmitted for review; approved is
// terminal.
func (s ProfileStatus) CanTransitionTo(target ProfileStatus) bool {
	switch s {
	case ProfileSignupPending:
		return target == ProfileApprovalPending
	case ProfileApprovalPending:
		return target == ProfileApproved || target == ProfileRejected
	case ProfileRejected:
		return target == ProfileApprovalPending
	}
	return false
}

// MemberProfile holds the business details a member submits for approval.
type MemberProfile struct {
	ID     uuid.UUID
	UserID uuid.UUID

	BusinessName        string
	BusinessType        string
	Industry            string
	BusinessDescription string
	Website             string
	Phone               string
	BusinessEmail       string
	AddressLine1        string
	AddressLine2        string
	City                string
	State               string
	ZipCode             string
	Country             string
	YearEstablished     *int
	EmployeesCount      string
	ServicesProducts    string
	TargetMarket        string

	Status          ProfileStatus
	RejectionReason *string
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsApproved returns true if the profile has been approved.
func (p *MemberProfile) IsApproved() bool {
	return p.Status == ProfileApproved
}

// IsApprovalPending returns true if the profile awaits administrator review.
func (p *MemberProfile) IsApprovalPending() bool {
	return p.Status == ProfileApprovalPending
}

// IsSignupPending returns true if the member has not finished signup yet.
func (p *MemberProfile) IsSignupPending() bool {
	return p.Status == ProfileSignupPending
}
