package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/domain"
)

// ActivationLinksRepository handles activation link persistence.
type ActivationLinksRepository struct {
	db *sql.DB
}

// NewActivationLinksRepository creates a new activation links repository.
func NewActivationLinksRepository(db *sql.DB) *ActivationLinksRepository {
	return &ActivationLinksRepository{db: db}
}

const linkColumns = `id, user_id, token, email, created_at, expires_at, used_at, sent_at, is_active`

func scanLink(row interface{ Scan(...any) error }) (*domain.ActivationLink, error) {
	link := &domain.ActivationLink{}
	err := row.Scan(
		&link.ID, &link.UserID, &link.Token, &link.Email,
		&link.CreatedAt, &link.ExpiresAt, &link.UsedAt, &link.SentAt, &link.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// CreateSuperseding deactivates every active link for the link's owner and
// inserts the new one in a single transaction, preserving the one-active-link
// invariant. A unique violation on the token column is reported as
// domain.ErrTokenCollision.
func (r *ActivationLinksRepository) CreateSuperseding(ctx context.Context, link *domain.ActivationLink) error {
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		deactivate := `
			UPDATE activation_links
			SET is_active = false
			WHERE user_id = $1 AND is_active
		`
		if _, err := tx.ExecContext(ctx, deactivate, link.UserID); err != nil {
			return err
		}

		insert := `
			INSERT INTO activation_links (id, user_id, token, email, created_at, expires_at, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, insert,
			link.ID, link.UserID, link.Token, link.Email,
			link.CreatedAt, link.ExpiresAt, link.Active,
		)
		if IsUniqueViolation(err) {
			return domain.ErrTokenCollision
		}
		return err
	})
}

// GetByToken retrieves an activation link by its token.
func (r *ActivationLinksRepository) GetByToken(ctx context.Context, token string) (*domain.ActivationLink, error) {
	query := `SELECT ` + linkColumns + ` FROM activation_links WHERE token = $1`
	return scanLink(r.db.QueryRowContext(ctx, query, token))
}

// ConsumeIfValid atomically marks a link used if and only if it is still
// active, unused, and unexpired at the given time. It returns false when the
// compare-and-set matched no row, which callers disambiguate by re-reading.
func (r *ActivationLinksRepository) ConsumeIfValid(ctx context.Context, token string, now time.Time) (bool, error) {
	query := `
		UPDATE activation_links
		SET used_at = $2, is_active = false
		WHERE token = $1 AND used_at IS NULL AND is_active AND expires_at > $2
	`
	result, err := r.db.ExecContext(ctx, query, token, now)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Deactivate marks a link inactive. It is a no-op for links that are already
// inactive and reports domain.ErrLinkNotFound for unknown tokens.
func (r *ActivationLinksRepository) Deactivate(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activation_links SET is_active = false WHERE token = $1`, token)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

// Restore returns a consumed link to circulation. Only links that were
// actually consumed are touched; deliberately deactivated links stay
// inactive.
func (r *ActivationLinksRepository) Restore(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE activation_links
		SET used_at = NULL, is_active = true
		WHERE token = $1 AND used_at IS NOT NULL
	`, token)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

// MarkSent records when the invitation email for a link went out.
func (r *ActivationLinksRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE activation_links SET sent_at = $2 WHERE id = $1`, id, at)
	return err
}

// LatestCreatedAt returns the creation time of the most recent link for a
// user, or domain.ErrLinkNotFound if the user has none.
func (r *ActivationLinksRepository) LatestCreatedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT created_at FROM activation_links
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrLinkNotFound
	}
	return createdAt, err
}

// ListForUser retrieves all links for a user, newest first.
func (r *ActivationLinksRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActivationLink, error) {
	query := `SELECT ` + linkColumns + ` FROM activation_links WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.ActivationLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
