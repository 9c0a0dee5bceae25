package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/activation"
	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/domain"
	"github.com/atea-seattle/memberd/internal/notification"
	"github.com/atea-seattle/memberd/internal/repository"
)

// ProfileStore is the profile persistence surface the membership workflow
// needs. Implemented by repository.MemberProfilesRepository.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MemberProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.MemberProfile, error)
	Upsert(ctx context.Context, p *domain.MemberProfile) error
	Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.ProfileStatus) (bool, error)
	ListByStatus(ctx context.Context, statuses []domain.ProfileStatus, limit, offset int) ([]*domain.MemberProfile, error)
	CountByStatus(ctx context.Context, status domain.ProfileStatus) (int, error)
}

// UserStore is the user persistence surface the membership workflow needs.
// Implemented by repository.UsersRepository.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, filter repository.ListFilter) ([]*domain.User, error)
	CountByStatus(ctx context.Context, status domain.UserStatus) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Config holds membership workflow settings.
type Config struct {
	// FrontendURL is the base URL signup links point at, without a trailing
	// slash.
	FrontendURL string
}

// Service runs the member onboarding workflow: admin invitations, signup
// completion, profile submission, and the approve/reject review step.
type Service struct {
	config     Config
	profiles   ProfileStore
	users      UserStore
	activation *activation.Service
	mailer     *notification.Mailer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new membership service.
func NewService(config Config, profiles ProfileStore, users UserStore, act *activation.Service, mailer *notification.Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config:     config,
		profiles:   profiles,
		users:      users,
		activation: act,
		mailer:     mailer,
		logger:     logger,
		now:        time.Now,
	}
}

// ProfileInput carries the business fields a member submits.
type ProfileInput struct {
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
}

func (in *ProfileInput) apply(p *domain.MemberProfile) {
	p.BusinessName = in.BusinessName
	p.BusinessType = in.BusinessType
	p.Industry = in.Industry
	p.BusinessDescription = in.BusinessDescription
	p.Website = in.Website
	p.Phone = in.Phone
	p.BusinessEmail = in.BusinessEmail
	p.AddressLine1 = in.AddressLine1
	p.AddressLine2 = in.AddressLine2
	p.City = in.City
	p.State = in.State
	p.ZipCode = in.ZipCode
	p.Country = in.Country
	p.YearEstablished = in.YearEstablished
	p.EmployeesCount = in.EmployeesCount
	p.ServicesProducts = in.ServicesProducts
	p.TargetMarket = in.TargetMarket
}

// InviteResult reports what an invitation produced. EmailChannel is empty when
// delivery failed on every channel; the invitation itself still stands and the
// link can be resent.
type InviteResult struct {
	User         *domain.User
	Link         *domain.ActivationLink
	SignupURL    string
	MembershipID string
	EmailChannel string
}

// Invite creates an invited account and emails a single-use signup link.
// Email delivery failure does not fail the invitation.
func (s *Service) Invite(ctx context.Context, name, email, inviterName string) (*InviteResult, error) {
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	now := s.now()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      domain.RoleUser,
		Status:    domain.UserSignupPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	link, err := s.activation.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue signup link: %w", err)
	}

	result := &InviteResult{
		User:         user,
		Link:         link,
		SignupURL:    s.SignupURL(link.Token),
		MembershipID: membershipID(user.ID),
	}

	body := notification.InvitationEmail(name, result.SignupURL, result.MembershipID, inviterName, link.ExpiresAt)
	delivery, err := s.mailer.Deliver(ctx, email, notification.InvitationSubject, body,
		notification.SendOptions{IsHTML: true})
	if err != nil {
		// The account and link exist; the admin can resend from the dashboard.
		s.logger.Error("invitation email failed on all channels",
			"user_id", user.ID, "error", err)
		return result, nil
	}

	result.EmailChannel = delivery.Channel
	if err := s.activation.MarkSent(ctx, link.ID); err != nil {
		s.logger.Warn("failed to record invitation send time",
			"link_id", link.ID, "error", err)
	}
	return result, nil
}

// ResendInvitation issues a replacement signup link for an account that has
// not finished onboarding and emails it. The previous link is superseded.
func (s *Service) ResendInvitation(ctx context.Context, email string) (*InviteResult, error) {
	link, err := s.activation.ResendByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, err
	}

	result := &InviteResult{
		User:         user,
		Link:         link,
		SignupURL:    s.SignupURL(link.Token),
		MembershipID: membershipID(user.ID),
	}

	body := notification.ActivationEmail(user.Name, result.SignupURL, link.ExpiresAt)
	delivery, err := s.mailer.Deliver(ctx, user.Email, notification.InvitationSubject, body,
		notification.SendOptions{IsHTML: true})
	if err != nil {
		s.logger.Error("resend email failed on all channels",
			"user_id", user.ID, "error", err)
		return result, nil
	}

	result.EmailChannel = delivery.Channel
	if err := s.activation.MarkSent(ctx, link.ID); err != nil {
		s.logger.Warn("failed to record invitation send time",
			"link_id", link.ID, "error", err)
	}
	return result, nil
}

// SignupURL builds the frontend signup URL for a token.
func (s *Service) SignupURL(token string) string {
	return strings.TrimSuffix(s.config.FrontendURL, "/") + "/member-signup/" + token
}

// membershipID derives the human-facing member number shown in the invitation.
func membershipID(userID uuid.UUID) string {
	return "ATEA" + strings.ToUpper(strings.ReplaceAll(userID.String(), "-", "")[:4])
}

// CompleteSignup consumes a signup link, sets the member's password, stores
// the submitted profile, and moves the account to approval_pending. The link
// is single-use; a second submission with the same token fails. A failure
// after the consume restores the link so the member can retry.
func (s *Service) CompleteSignup(ctx context.Context, token, password string, input *ProfileInput) (*domain.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	link, err := s.activation.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	// Everything after the consume must leave the link usable on failure,
	// otherwise a transient error burns the single-use invitation.
	completed := false
	defer func() {
		if completed {
			return
		}
		if rerr := s.activation.Restore(context.WithoutCancel(ctx), token); rerr != nil {
			s.logger.Error("failed to restore activation link after signup failure",
				"link_id", link.ID, "error", rerr)
		}
	}()

	user, err := s.users.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled() {
		return nil, domain.ErrUserDisabled
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	now := s.now()
	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = &domain.MemberProfile{ID: uuid.New(), UserID: user.ID, CreatedAt: now}
	} else if err != nil {
		return nil, err
	}
	input.apply(profile)
	profile.Status = domain.ProfileApprovalPending
	profile.UpdatedAt = now
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to store member profile: %w", err)
	}

	if err := s.users.UpdateStatus(ctx, user.ID, domain.UserApprovalPending); err != nil {
		return nil, err
	}
	user.Status = domain.UserApprovalPending
	completed = true

	s.logger.Info("member signup completed", "user_id", user.ID)
	return user, nil
}

// UpdateProfile stores edits to a member's own profile. Editing a rejected
// profile resubmits it for review; approved and pending profiles keep their
// status.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input *ProfileInput) (*domain.MemberProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled() {
		return nil, domain.ErrUserDisabled
	}

	now := s.now()
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = &domain.MemberProfile{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    domain.ProfileSignupPending,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	input.apply(profile)
	if profile.Status == domain.ProfileRejected {
		profile.Status = domain.ProfileApprovalPending
		profile.RejectionReason = nil
	}
	profile.UpdatedAt = now

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	if profile.Status == domain.ProfileApprovalPending && user.Status != domain.UserActive {
		if err := s.users.UpdateStatus(ctx, userID, domain.UserApprovalPending); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// SubmitForApproval moves a signup_pending profile into review. The
// status check runs against the store so concurrent submissions cannot both
// succeed.
func (s *Service) SubmitForApproval(ctx context.Context, userID uuid.UUID) (*domain.MemberProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.profiles.SetStatus(ctx, profile.ID, domain.ProfileSignupPending, domain.ProfileApprovalPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.InvalidTransitionError{
			Entity:   "member profile",
			Required: string(domain.ProfileSignupPending),
			Actual:   string(profile.Status),
		}
	}
	profile.Status = domain.ProfileApprovalPending

	if err := s.users.UpdateStatus(ctx, userID, domain.UserApprovalPending); err != nil {
		return nil, err
	}

	s.logger.Info("profile submitted for approval", "user_id", userID, "profile_id", profile.ID)
	return profile, nil
}

// Approve marks a profile approved and activates the owning account. Only
// profiles in approval_pending can be approved; the approver and timestamp
// are recorded and any earlier rejection reason is cleared.
func (s *Service) Approve(ctx context.Context, profileID, approverID uuid.UUID) (*domain.MemberProfile, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.profiles.Approve(ctx, profileID, approverID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.InvalidTransitionError{
			Entity:   "member profile",
			Required: string(domain.ProfileApprovalPending),
			Actual:   string(profile.Status),
		}
	}
	profile.Status = domain.ProfileApproved
	profile.ApprovedAt = &now
	profile.ApprovedBy = &approverID
	profile.RejectionReason = nil

	if err := s.users.UpdateStatus(ctx, profile.UserID, domain.UserActive); err != nil {
		return nil, fmt.Errorf("failed to activate approved member: %w", err)
	}

	s.logger.Info("member profile approved",
		"profile_id", profileID, "user_id", profile.UserID, "approved_by", approverID)
	return profile, nil
}

// Reject marks a profile rejected with a reason. The account keeps its
// status; the member can edit the profile to resubmit.
func (s *Service) Reject(ctx context.Context, profileID uuid.UUID, reason string) (*domain.MemberProfile, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	ok, err := s.profiles.Reject(ctx, profileID, reason, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.InvalidTransitionError{
			Entity:   "member profile",
			Required: string(domain.ProfileApprovalPending),
			Actual:   string(profile.Status),
		}
	}
	profile.Status = domain.ProfileRejected
	profile.RejectionReason = &reason

	s.logger.Info("member profile rejected", "profile_id", profileID, "user_id", profile.UserID)
	return profile, nil
}

// Profile returns a member's own profile.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*domain.MemberProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// PendingProfiles returns profiles awaiting review, newest first.
func (s *Service) PendingProfiles(ctx context.Context, limit, offset int) ([]*domain.MemberProfile, error) {
	return s.profiles.ListByStatus(ctx, []domain.ProfileStatus{domain.ProfileApprovalPending}, limit, offset)
}

// ApprovedProfiles returns the public member directory.
func (s *Service) ApprovedProfiles(ctx context.Context, limit, offset int) ([]*domain.MemberProfile, error) {
	return s.profiles.ListByStatus(ctx, []domain.ProfileStatus{domain.ProfileApproved}, limit, offset)
}

// Stats summarises the onboarding pipeline for the admin dashboard.
type Stats struct {
	TotalUsers       int `json:"total_users"`
	ActiveMembers    int `json:"active_members"`
	SignupPending    int `json:"signup_pending"`
	ApprovalPending  int `json:"approval_pending"`
	Disabled         int `json:"disabled"`
	NewThisMonth     int `json:"new_this_month"`
	ApprovedProfiles int `json:"approved_profiles"`
	RejectedProfiles int `json:"rejected_profiles"`
}

// DashboardStats gathers the counts shown on the admin dashboard.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	counters := []struct {
		dst    *int
		status domain.UserStatus
	}{
		{&stats.ActiveMembers, domain.UserActive},
		{&stats.SignupPending, domain.UserSignupPending},
		{&stats.ApprovalPending, domain.UserApprovalPending},
		{&stats.Disabled, domain.UserDisabled},
	}
	for _, c := range counters {
		if *c.dst, err = s.users.CountByStatus(ctx, c.status); err != nil {
			return nil, err
		}
	}
	stats.TotalUsers = stats.ActiveMembers + stats.SignupPending + stats.ApprovalPending + stats.Disabled

	pending, err := s.users.CountByStatus(ctx, domain.UserPending)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers += pending

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if stats.NewThisMonth, err = s.users.CountCreatedSince(ctx, monthStart); err != nil {
		return nil, err
	}

	if stats.ApprovedProfiles, err = s.profiles.CountByStatus(ctx, domain.ProfileApproved); err != nil {
		return nil, err
	}
	if stats.RejectedProfiles, err = s.profiles.CountByStatus(ctx, domain.ProfileRejected); err != nil {
		return nil, err
	}
	return stats, nil
}

// SetUserStatus applies an admin status change, honouring the lifecycle rules.
func (s *Service) SetUserStatus(ctx context.Context, userID uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Status.CanTransitionTo(status) {
		return nil, &domain.InvalidTransitionError{
			Entity:   "user",
			Required: "any non-terminal status",
			Actual:   string(user.Status),
		}
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	user.Status = status
	s.logger.Info("user status changed", "user_id", userID, "status", status)
	return user, nil
}

// Users lists accounts for the admin dashboard.
func (s *Service) Users(ctx context.Context, filter repository.ListFilter) ([]*domain.User, error) {
	return s.users.List(ctx, filter)
}

// User returns a single account with its profile, if any.
func (s *Service) User(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.MemberProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return user, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// DeleteUser removes an account and its cascading profile and links.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.users.Delete(ctx, userID)
}
