package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atea-seattle/memberd/internal/domain"
)

// MemberProfilesRepository handles member profile persistence.
type MemberProfilesRepository struct {
	db *sql.DB
}

// NewMemberProfilesRepository creates a new member profiles repository.
func NewMemberProfilesRepository(db *sql.DB) *MemberProfilesRepository {
	return &MemberProfilesRepository{db: db}
}

const profileColumns = `
	id, user_id, business_name, business_type, industry, business_description,
	website, phone, business_email, address_line_1, address_line_2, city, state,
	zip_code, country, year_established, employees_count, services_products,
	target_market, profile_status, rejection_reason, approved_at, approved_by,
	created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.MemberProfile, error) {
	p := &domain.MemberProfile{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.BusinessName, &p.BusinessType, &p.Industry,
		&p.BusinessDescription, &p.Website, &p.Phone, &p.BusinessEmail,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.ZipCode,
		&p.Country, &p.YearEstablished, &p.EmployeesCount, &p.ServicesProducts,
		&p.TargetMarket, &p.Status, &p.RejectionReason, &p.ApprovedAt,
		&p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a profile by ID.
func (r *MemberProfilesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MemberProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM member_profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves the profile owned by a user.
func (r *MemberProfilesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.MemberProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM member_profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

// Upsert creates the profile or replaces its business fields, status, and
// rejection reason, keyed on the owning user. Approval metadata is left as
// is.
func (r *MemberProfilesRepository) Upsert(ctx context.Context, p *domain.MemberProfile) error {
	return r.UpsertTx(ctx, r.db, p)
}

// UpsertTx creates or updates a profile within a transaction.
func (r *MemberProfilesRepository) UpsertTx(ctx context.Context, q Querier, p *domain.MemberProfile) error {
	query := `
		INSERT INTO member_profiles (
			id, user_id, business_name, business_type, industry, business_description,
			website, phone, business_email, address_line_1, address_line_2, city, state,
			zip_code, country, year_established, employees_count, services_products,
			target_market, profile_status, rejection_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			business_type = EXCLUDED.business_type,
			industry = EXCLUDED.industry,
			business_description = EXCLUDED.business_description,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			business_email = EXCLUDED.business_email,
			address_line_1 = EXCLUDED.address_line_1,
			address_line_2 = EXCLUDED.address_line_2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			country = EXCLUDED.country,
			year_established = EXCLUDED.year_established,
			employees_count = EXCLUDED.employees_count,
			services_products = EXCLUDED.services_products,
			target_market = EXCLUDED.target_market,
			profile_status = EXCLUDED.profile_status,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = EXCLUDED.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		p.ID, p.UserID, p.BusinessName, p.BusinessType, p.Industry,
		p.BusinessDescription, p.Website, p.Phone, p.BusinessEmail,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.ZipCode, p.Country,
		p.YearEstablished, p.EmployeesCount, p.ServicesProducts, p.TargetMarket,
		p.Status, p.RejectionReason, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// Approve atomically marks a profile approved if it is still awaiting review,
// recording the approver and clearing any rejection reason. Returns false
// when the profile was not in approval_pending.
func (r *MemberProfilesRepository) Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE member_profiles
		SET profile_status = $2, approved_at = $3, approved_by = $4,
		    rejection_reason = NULL, updated_at = $3
		WHERE id = $1 AND profile_status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		id, domain.ProfileApproved, at, approverID, domain.ProfileApprovalPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Reject atomically marks a profile rejected with a reason if it is still
// awaiting review. Returns false when the profile was not in
// approval_pending.
func (r *MemberProfilesRepository) Reject(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE member_profiles
		SET profile_status = $2, rejection_reason = $3,
		    approved_at = NULL, approved_by = NULL, updated_at = $4
		WHERE id = $1 AND profile_status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		id, domain.ProfileRejected, reason, at, domain.ProfileApprovalPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// SetStatus atomically moves a profile from one status to another. Returns
// false when the profile was not in the expected status.
func (r *MemberProfilesRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.ProfileStatus) (bool, error) {
	query := `
		UPDATE member_profiles
		SET profile_status = $3, updated_at = NOW()
		WHERE id = $1 AND profile_status = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// ListByStatus retrieves profiles in any of the given statuses, newest first.
func (r *MemberProfilesRepository) ListByStatus(ctx context.Context, statuses []domain.ProfileStatus, limit, offset int) ([]*domain.MemberProfile, error) {
	query := `SELECT ` + profileColumns + `
		FROM member_profiles
		WHERE profile_status = ANY($1)
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`

	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ss), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.MemberProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// CountByStatus returns the number of profiles in the given status.
func (r *MemberProfilesRepository) CountByStatus(ctx context.Context, status domain.ProfileStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM member_profiles WHERE profile_status = $1`, status,
	).Scan(&count)
	return count, err
}
