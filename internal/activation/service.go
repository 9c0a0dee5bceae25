package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/domain"
)

// LinkStore is the persistence surface the activation lifecycle needs.
// Implemented by repository.ActivationLinksRepository.
type LinkStore interface {
	CreateSuperseding(ctx context.Context, link *domain.ActivationLink) error
	GetByToken(ctx context.Context, token string) (*domain.ActivationLink, error)
	ConsumeIfValid(ctx context.Context, token string, now time.Time) (bool, error)
	Restore(ctx context.Context, token string) error
	Deactivate(ctx context.Context, token string) error
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	LatestCreatedAt(ctx context.Context, userID uuid.UUID) (time.Time, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActivationLink, error)
}

// UserStore is the subset of user persistence the lifecycle needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
}

// Config holds activation lifecycle policy. Both windows are policy choices,
// not protocol requirements, so they are configurable.
type Config struct {
	// LinkTTL is how long an activation link stays valid. Default 45 days.
	LinkTTL time.Duration
	// ResendWindow is the minimum gap between link issuances for one user.
	// Default 5 minutes.
	ResendWindow time.Duration
}

const (
	DefaultLinkTTL      = 45 * 24 * time.Hour
	DefaultResendWindow = 5 * time.Minute
)

// Service governs the activation link lifecycle: issuance, validation,
// consumption, and deactivation.
type Service struct {
	config Config
	links  LinkStore
	users  UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activation service.
func NewService(config Config, links LinkStore, users UserStore, logger *slog.Logger) *Service {
	if config.LinkTTL == 0 {
		config.LinkTTL = DefaultLinkTTL
	}
	if config.ResendWindow == 0 {
		config.ResendWindow = DefaultResendWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config: config,
		links:  links,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Issue creates a fresh activation link for a user, deactivating any prior
// active links in the same step. The token is generated with UUID entropy;
// on the unlikely uniqueness conflict it regenerates once before giving up.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, email string) (*domain.ActivationLink, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled() {
		return nil, domain.ErrUserDisabled
	}
	if email == "" {
		email = user.Email
	}

	for attempt := 0; attempt < 2; attempt++ {
		now := s.now()
		link := &domain.ActivationLink{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     uuid.NewString(),
			Email:     email,
			CreatedAt: now,
			ExpiresAt: now.Add(s.config.LinkTTL),
			Active:    true,
		}

		err = s.links.CreateSuperseding(ctx, link)
		if errors.Is(err, domain.ErrTokenCollision) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create activation link: %w", err)
		}

		s.logger.Info("activation link issued", "user_id", userID, "link_id", link.ID)
		return link, nil
	}

	return nil, domain.ErrTokenCollision
}

// Resend issues a new link for a user, refusing when the account is already
// active or disabled, or when a link was issued within the resend window.
func (s *Service) Resend(ctx context.Context, userID uuid.UUID) (*domain.ActivationLink, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resend(ctx, user)
}

// ResendByEmail is Resend keyed by the account email, used by the public
// resend endpoint.
func (s *Service) ResendByEmail(ctx context.Context, email string) (*domain.ActivationLink, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.resend(ctx, user)
}

func (s *Service) resend(ctx context.Context, user *domain.User) (*domain.ActivationLink, error) {
	if user.IsActive() {
		return nil, domain.ErrAlreadyActivated
	}
	if user.IsDisabled() {
		return nil, domain.ErrUserDisabled
	}

	lastIssued, err := s.links.LatestCreatedAt(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrLinkNotFound) {
		return nil, err
	}
	if err == nil && s.now().Sub(lastIssued) < s.config.ResendWindow {
		return nil, domain.ErrTooSoon
	}

	return s.Issue(ctx, user.ID, user.Email)
}

// ValidationResult reports why a link is or is not consumable. Kind is one of
// valid, used, expired, inactive, or not_found; Link is nil for not_found.
type ValidationResult struct {
	Kind domain.LinkStatus
	Link *domain.ActivationLink
}

// Validate classifies a link without consuming it. Unknown tokens yield
// not_found; invalid links report the most specific reason (used before
// expired before inactive).
func (s *Service) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	link, err := s.links.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrLinkNotFound) {
		return &ValidationResult{Kind: domain.LinkNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ValidationResult{Kind: link.Status(s.now()), Link: link}, nil
}

// Consume atomically marks a valid link as used. The check-and-set runs
// against the store so exactly one of any concurrent consumers wins; losers
// that validated an unused link get ErrConcurrentConsumption.
func (s *Service) Consume(ctx context.Context, token string) (*domain.ActivationLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := statusError(link.Status(now)); err != nil {
		return nil, err
	}

	ok, err := s.links.ConsumeIfValid(ctx, token, now)
	if err != nil {
		return nil, fmt.Errorf("failed to consume activation link: %w", err)
	}
	if !ok {
		// The link was valid a moment ago; find out what changed.
		link, err = s.links.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		switch link.Status(s.now()) {
		case domain.LinkUsed:
			return nil, domain.ErrConcurrentConsumption
		case domain.LinkExpired:
			return nil, domain.ErrLinkExpired
		default:
			return nil, domain.ErrLinkInactive
		}
	}

	link.UsedAt = &now
	link.Active = false
	s.logger.Info("activation link consumed", "link_id", link.ID, "user_id", link.UserID)
	return link, nil
}

// Activate consumes a link and marks the owning account active. This is the
// invite-then-activate flow where no profile submission is involved.
func (s *Service) Activate(ctx context.Context, token string) (*domain.User, error) {
	link, err := s.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, link.UserID, domain.UserActive); err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	user, err := s.users.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account activated", "user_id", user.ID)
	return user, nil
}

// Restore returns a consumed link to valid. Signup completion uses it to
// back out a consume when a later step of the same operation fails, so a
// transient failure does not burn the invitation.
func (s *Service) Restore(ctx context.Context, token string) error {
	return s.links.Restore(ctx, token)
}

// Deactivate marks a link inactive. Already-inactive links are left as they
// are; used links stay used.
func (s *Service) Deactivate(ctx context.Context, token string) error {
	return s.links.Deactivate(ctx, token)
}

// MarkSent records that the invitation email for a link was handed to a
// delivery channel.
func (s *Service) MarkSent(ctx context.Context, linkID uuid.UUID) error {
	return s.links.MarkSent(ctx, linkID, s.now())
}

// ListForUser returns every link ever issued for a user, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActivationLink, error) {
	return s.links.ListForUser(ctx, userID)
}

func statusError(status domain.LinkStatus) error {
	switch status {
	case domain.LinkValid:
		return nil
	case domain.LinkUsed:
		return domain.ErrLinkAlreadyUsed
	case domain.LinkExpired:
		return domain.ErrLinkExpired
	case domain.LinkNotFound:
		return domain.ErrLinkNotFound
	default:
		return domain.ErrLinkInactive
	}
}
