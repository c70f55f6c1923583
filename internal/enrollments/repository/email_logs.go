package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EmailLog struct {
	ID           uuid.UUID
	EnrollmentID uuid.UUID
	StepID       uuid.UUID
	SentAt       *time.Time
	Opened       bool
	OpenedAt     *time.Time
	Clicked      bool
	ClickedAt    *time.Time
	CreatedAt    time.Time
}

const emailLogColumns = `id, enrollment_id, step_id, sent_at, opened, opened_at, clicked, clicked_at, created_at`

func scanEmailLog(row pgx.Row) (EmailLog, error) {
	var l EmailLog
	err := row.Scan(
		&l.ID, &l.EnrollmentID, &l.StepID, &l.SentAt,
		&l.Opened, &l.OpenedAt, &l.Clicked, &l.ClickedAt, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmailLog{}, ErrNotFound
	}
	return l, err
}

// CreateEmailLog records a send attempt before the transport call so a
// log identifier exists even when delivery metadata arrives later.
func (r *Repository) CreateEmailLog(ctx context.Context, enrollmentID, stepID uuid.UUID) (EmailLog, error) {
	return scanEmailLog(r.pool.QueryRow(ctx, `
		INSERT INTO sequence_email_logs (enrollment_id, step_id)
		VALUES ($1, $2)
		RETURNING `+emailLogColumns+`
	`, enrollmentID, stepID))
}

func (r *Repository) GetEmailLog(ctx context.Context, id uuid.UUID) (EmailLog, error) {
	return scanEmailLog(r.pool.QueryRow(ctx, `
		SELECT `+emailLogColumns+` FROM sequence_email_logs WHERE id = $1
	`, id))
}

// MarkSent stamps the delivery time once the transport call succeeds.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sequence_email_logs SET sent_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOpened sets the opened flag once. The conditional write keeps the
// earliest open authoritative even under concurrent pixel fires.
func (r *Repository) MarkOpened(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sequence_email_logs
		SET opened = TRUE, opened_at = now()
		WHERE id = $1 AND opened = FALSE
	`, id)
	return err
}

// MarkClicked sets the clicked flag once and backfills the opened flag,
// since a click implies the email was opened.
func (r *Repository) MarkClicked(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE sequence_email_logs
		SET clicked = TRUE, clicked_at = now()
		WHERE id = $1 AND clicked = FALSE
	`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE sequence_email_logs
		SET opened = TRUE, opened_at = now()
		WHERE id = $1 AND opened = FALSE
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
