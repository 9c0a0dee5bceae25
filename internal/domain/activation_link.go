package domain

import (
	"time"

	"github.com/google/uuid"
)

// LinkStatus is the outcome of validating an activation link.
type LinkStatus string

const (
	LinkValid    LinkStatus = "valid"
	LinkUsed     LinkStatus = "used"
	LinkExpired  LinkStatus = "expired"
	LinkInactive LinkStatus = "inactive"
	LinkNotFound LinkStatus = "not_found"
)

// ActivationLink is a single-use, time-bounded invitation token. At most one
// link per user is active at a time; issuing a new one deactivates the rest.
type ActivationLink struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
	SentAt    *time.Time
	Active    bool
}

// IsUsed reports whether the link has been consumed. A used link is
// permanently terminal.
func (l *ActivationLink) IsUsed() bool {
	return l.UsedAt != nil
}

// IsExpired reports whether the link's lifetime has elapsed at the given time.
func (l *ActivationLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IsValid reports whether the link can still be consumed at the given time.
func (l *ActivationLink) IsValid(now time.Time) bool {
	return l.Active && !l.IsUsed() && !l.IsExpired(now)
}

// Status classifies the link at the given time. When a link is invalid for
// more than one reason, used wins over expired, which wins over inactive,
// so callers get the most specific explanation.
func (l *ActivationLink) Status(now time.Time) LinkStatus {
	switch {
	case l.IsUsed():
		return LinkUsed
	case l.IsExpired(now):
		return LinkExpired
	case !l.Active:
		return LinkInactive
	default:
		return LinkValid
	}
}
