package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("enrollment not found")

const (
	StatusActive       = "active"
	StatusCompleted    = "completed"
	StatusUnsubscribed = "unsubscribed"
	StatusPaused       = "paused"
)

type Enrollment struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	SequenceID    uuid.UUID
	CurrentStepID *uuid.UUID
	Status        string
	NextEmailAt   *time.Time
	EnrolledAt    time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const enrollmentColumns = `id, lead_id, sequence_id, current_step_id, status, next_email_at, enrolled_at, completed_at, updated_at`

func scanEnrollment(row pgx.Row) (Enrollment, error) {
	var e Enrollment
	err := row.Scan(
		&e.ID, &e.LeadID, &e.SequenceID, &e.CurrentStepID, &e.Status,
		&e.NextEmailAt, &e.EnrolledAt, &e.CompletedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) Create(ctx context.Context, leadID, sequenceID, currentStepID uuid.UUID, nextEmailAt time.Time) (Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, `
		INSERT INTO lead_sequence_enrollments (lead_id, sequence_id, current_step_id, status, next_email_at)
		VALUES ($1, $2, $3, 'active', $4)
		RETURNING `+enrollmentColumns+`
	`, leadID, sequenceID, currentStepID, nextEmailAt))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, `
		SELECT `+enrollmentColumns+` FROM lead_sequence_enrollments WHERE id = $1
	`, id))
}

func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Enrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+enrollmentColumns+`
		FROM lead_sequence_enrollments
		WHERE lead_id = $1
		ORDER BY enrolled_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ClaimDue atomically claims up to limit due active enrollments. Claimed
// rows get their next send time pushed forward by the lease so a
// concurrent scheduler instance cannot pick them up mid-send. A send
// that fails is retried once the lease expires.
func (r *Repository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]Enrollment, error) {
	if limit < 1 {
		limit = 50
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `WITH cte AS (
		SELECT id
		FROM lead_sequence_enrollments
		WHERE status = 'active' AND next_email_at <= now()
		ORDER BY next_email_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE lead_sequence_enrollments e
	SET next_email_at = now() + $2, updated_at = now()
	FROM cte
	WHERE e.id = cte.id
	RETURNING e.id, e.lead_id, e.sequence_id, e.current_step_id, e.status, e.next_email_at, e.enrolled_at, e.completed_at, e.updated_at`,
		limit, lease)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// Advance moves an active enrollment to the given step with a new send time.
func (r *Repository) Advance(ctx context.Context, id, stepID uuid.UUID, nextEmailAt time.Time) (Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, `
		UPDATE lead_sequence_enrollments
		SET current_step_id = $2, next_email_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'active'
		RETURNING `+enrollmentColumns+`
	`, id, stepID, nextEmailAt))
}

// Complete terminates an enrollment that has sent its final step.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID) (Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, `
		UPDATE lead_sequence_enrollments
		SET status = 'completed', current_step_id = NULL, next_email_at = NULL, completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'active'
		RETURNING `+enrollmentColumns+`
	`, id))
}

// CancelActiveByLead moves every active enrollment of a lead to
// unsubscribed. Returns the number of cancelled enrollments.
func (r *Repository) CancelActiveByLead(ctx context.Context, leadID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_sequence_enrollments
		SET status = 'unsubscribed', next_email_at = NULL, completed_at = now(), updated_at = now()
		WHERE lead_id = $1 AND status = 'active'
	`, leadID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
