// Package leads gives the nurture engine read access to the externally-owned
// lead records plus write access to the opt-out fields.
package leads

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Lead struct {
	ID                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Company           string
	PreferredLanguage string
	Status            string
	OptedOut          bool
	OptedOutAt        *time.Time
	OptOutReason      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, first_name, last_name, email, company, preferred_language, status, opted_out, opted_out_at, opt_out_reason, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Company,
		&lead.PreferredLanguage,
		&lead.Status,
		&lead.OptedOut,
		&lead.OptedOutAt,
		&lead.OptOutReason,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM ecosystem_leads
		WHERE id = $1
	`, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM ecosystem_leads
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, email))
}

// SetOptOut flags the lead as opted out and records when and why.
func (r *Repository) SetOptOut(ctx context.Context, id uuid.UUID, reason string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE ecosystem_leads
		SET opted_out = TRUE, opted_out_at = now(), opt_out_reason = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, reason))
}

// ClearOptOut re-enables nurture emails for the lead.
func (r *Repository) ClearOptOut(ctx context.Context, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE ecosystem_leads
		SET opted_out = FALSE, opted_out_at = NULL, opt_out_reason = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id))
}

func (r *Repository) IsOptedOut(ctx context.Context, id uuid.UUID) (bool, error) {
	var optedOut bool
	err := r.pool.QueryRow(ctx, `
		SELECT opted_out FROM ecosystem_leads WHERE id = $1
	`, id).Scan(&optedOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return optedOut, err
}
