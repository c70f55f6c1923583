package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("sequence not found")

type Sequence struct {
	ID          uuid.UUID
	Name        string
	Description string
	TriggerType string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Step struct {
	ID         uuid.UUID
	SequenceID uuid.UUID
	StepOrder  int
	DelayDays  int
	DelayHours int
	SubjectEN  string
	SubjectFR  string
	BodyEN     string
	BodyFR     string
	CreatedAt  time.Time
}

type CreateStepParams struct {
	DelayDays  int
	DelayHours int
	SubjectEN  string
	SubjectFR  string
	BodyEN     string
	BodyFR     string
}

type CreateSequenceParams struct {
	Name        string
	Description string
	TriggerType string
	Steps       []CreateStepParams
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sequenceColumns = `id, name, description, trigger_type, is_active, created_at, updated_at`
const stepColumns = `id, sequence_id, step_order, delay_days, delay_hours, subject_en, subject_fr, body_en, body_fr, created_at`

func scanSequence(row pgx.Row) (Sequence, error) {
	var seq Sequence
	err := row.Scan(&seq.ID, &seq.Name, &seq.Description, &seq.TriggerType, &seq.IsActive, &seq.CreatedAt, &seq.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sequence{}, ErrNotFound
	}
	return seq, err
}

func scanStep(row pgx.Row) (Step, error) {
	var step Step
	err := row.Scan(
		&step.ID, &step.SequenceID, &step.StepOrder, &step.DelayDays, &step.DelayHours,
		&step.SubjectEN, &step.SubjectFR, &step.BodyEN, &step.BodyFR, &step.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Step{}, ErrNotFound
	}
	return step, err
}

// Create inserts a sequence together with its steps in a single transaction.
// Steps get dense 1-based orders in the order they are provided.
func (r *Repository) Create(ctx context.Context, params CreateSequenceParams) (Sequence, []Step, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Sequence{}, nil, err
	}
	defer tx.Rollback(ctx)

	seq, err := scanSequence(tx.QueryRow(ctx, `
		INSERT INTO follow_up_sequences (name, description, trigger_type)
		VALUES ($1, $2, $3)
		RETURNING `+sequenceColumns+`
	`, params.Name, params.Description, params.TriggerType))
	if err != nil {
		return Sequence{}, nil, err
	}

	steps := make([]Step, 0, len(params.Steps))
	for i, sp := range params.Steps {
		step, err := scanStep(tx.QueryRow(ctx, `
			INSERT INTO sequence_steps (sequence_id, step_order, delay_days, delay_hours, subject_en, subject_fr, body_en, body_fr)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+stepColumns+`
		`, seq.ID, i+1, sp.DelayDays, sp.DelayHours, sp.SubjectEN, sp.SubjectFR, sp.BodyEN, sp.BodyFR))
		if err != nil {
			return Sequence{}, nil, err
		}
		steps = append(steps, step)
	}

	if err := tx.Commit(ctx); err != nil {
		return Sequence{}, nil, err
	}
	return seq, steps, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Sequence, error) {
	return scanSequence(r.pool.QueryRow(ctx, `
		SELECT `+sequenceColumns+` FROM follow_up_sequences WHERE id = $1
	`, id))
}

func (r *Repository) List(ctx context.Context) ([]Sequence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sequenceColumns+`
		FROM follow_up_sequences
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sequences := make([]Sequence, 0)
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	return sequences, rows.Err()
}

// Deactivate flips the active flag. Sequences are never physically deleted.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (Sequence, error) {
	return scanSequence(r.pool.QueryRow(ctx, `
		UPDATE follow_up_sequences
		SET is_active = FALSE, updated_at = now()
		WHERE id = $1
		RETURNING `+sequenceColumns+`
	`, id))
}

func (r *Repository) ListSteps(ctx context.Context, sequenceID uuid.UUID) ([]Step, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stepColumns+`
		FROM sequence_steps
		WHERE sequence_id = $1
		ORDER BY step_order ASC
	`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]Step, 0)
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (r *Repository) GetStep(ctx context.Context, stepID uuid.UUID) (Step, error) {
	return scanStep(r.pool.QueryRow(ctx, `
		SELECT `+stepColumns+` FROM sequence_steps WHERE id = $1
	`, stepID))
}

// GetStepByOrder returns the step at the given 1-based position.
func (r *Repository) GetStepByOrder(ctx context.Context, sequenceID uuid.UUID, order int) (Step, error) {
	return scanStep(r.pool.QueryRow(ctx, `
		SELECT `+stepColumns+`
		FROM sequence_steps
		WHERE sequence_id = $1 AND step_order = $2
	`, sequenceID, order))
}

// AddStep appends a step after the current last position.
func (r *Repository) AddStep(ctx context.Context, sequenceID uuid.UUID, params CreateStepParams) (Step, error) {
	return scanStep(r.pool.QueryRow(ctx, `
		INSERT INTO sequence_steps (sequence_id, step_order, delay_days, delay_hours, subject_en, subject_fr, body_en, body_fr)
		SELECT $1, COALESCE(MAX(step_order), 0) + 1, $2, $3, $4, $5, $6, $7
		FROM sequence_steps
		WHERE sequence_id = $1
		RETURNING `+stepColumns+`
	`, sequenceID, params.DelayDays, params.DelayHours, params.SubjectEN, params.SubjectFR, params.BodyEN, params.BodyFR))
}
