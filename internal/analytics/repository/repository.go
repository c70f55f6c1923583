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

// SequenceRow is the minimal sequence projection analytics needs.
type SequenceRow struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

// EmailTotals aggregates log rows. Sent counts every log row, including
// rows whose transport send has not succeeded yet.
type EmailTotals struct {
	Sent    int
	Opened  int
	Clicked int
}

// StepStats carries per-step send and engagement counts.
type StepStats struct {
	StepID     uuid.UUID
	StepOrder  int
	SubjectEN  string
	SubjectFR  string
	DelayDays  int
	DelayHours int
	Sent       int
	Opened     int
	Clicked    int
}

// TrendPoint is one day of enrollment volume.
type TrendPoint struct {
	Date        string
	Enrollments int
}

// ActivityPoint is one day of send and engagement volume.
type ActivityPoint struct {
	Date       string
	EmailsSent int
	Opened     int
	Clicked    int
}

// ConversionRow carries per-sequence conversion counts for the overall view.
type ConversionRow struct {
	ID          uuid.UUID
	Name        string
	IsActive    bool
	Enrollments int
	Conversions int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetSequence(ctx context.Context, id uuid.UUID) (SequenceRow, error) {
	var s SequenceRow
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, is_active FROM follow_up_sequences WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return SequenceRow{}, ErrNotFound
	}
	return s, err
}

// EnrollmentStatusCounts returns enrollment counts keyed by status.
// Statuses with no enrollments are absent from the map.
func (r *Repository) EnrollmentStatusCounts(ctx context.Context, sequenceID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM lead_sequence_enrollments
		WHERE sequence_id = $1
		GROUP BY status
	`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *Repository) SequenceEmailTotals(ctx context.Context, sequenceID uuid.UUID) (EmailTotals, error) {
	var t EmailTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE l.opened),
		       COUNT(*) FILTER (WHERE l.clicked)
		FROM sequence_email_logs l
		JOIN lead_sequence_enrollments e ON e.id = l.enrollment_id
		WHERE e.sequence_id = $1
	`, sequenceID).Scan(&t.Sent, &t.Opened, &t.Clicked)
	return t, err
}

// CountConversions counts enrollments whose lead reached status "won".
func (r *Repository) CountConversions(ctx context.Context, sequenceID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM lead_sequence_enrollments e
		JOIN ecosystem_leads el ON el.id = e.lead_id
		WHERE e.sequence_id = $1 AND el.status = 'won'
	`, sequenceID).Scan(&n)
	return n, err
}

func (r *Repository) StepStats(ctx context.Context, sequenceID uuid.UUID) ([]StepStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.step_order, s.subject_en, s.subject_fr, s.delay_days, s.delay_hours,
		       COUNT(l.id),
		       COUNT(l.id) FILTER (WHERE l.opened),
		       COUNT(l.id) FILTER (WHERE l.clicked)
		FROM sequence_steps s
		LEFT JOIN sequence_email_logs l ON l.step_id = s.id
		WHERE s.sequence_id = $1
		GROUP BY s.id, s.step_order, s.subject_en, s.subject_fr, s.delay_days, s.delay_hours
		ORDER BY s.step_order
	`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StepStats
	for rows.Next() {
		var s StepStats
		if err := rows.Scan(
			&s.StepID, &s.StepOrder, &s.SubjectEN, &s.SubjectFR, &s.DelayDays, &s.DelayHours,
			&s.Sent, &s.Opened, &s.Clicked,
		); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *Repository) EnrollmentTrend(ctx context.Context, sequenceID uuid.UUID, since time.Time) ([]TrendPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT enrolled_at::date::text, COUNT(*)
		FROM lead_sequence_enrollments
		WHERE sequence_id = $1 AND enrolled_at >= $2
		GROUP BY enrolled_at::date
		ORDER BY enrolled_at::date
	`, sequenceID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Enrollments); err != nil {
			return nil, err
		}
		trend = append(trend, p)
	}
	return trend, rows.Err()
}

// SequenceConversionRows returns every sequence with its enrollment and
// conversion counts in one pass, for the overall analytics view.
func (r *Repository) SequenceConversionRows(ctx context.Context) ([]ConversionRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.is_active,
		       COUNT(e.id),
		       COUNT(e.id) FILTER (WHERE el.status = 'won')
		FROM follow_up_sequences s
		LEFT JOIN lead_sequence_enrollments e ON e.sequence_id = s.id
		LEFT JOIN ecosystem_leads el ON el.id = e.lead_id
		GROUP BY s.id, s.name, s.is_active
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversionRow
	for rows.Next() {
		var c ConversionRow
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.Enrollments, &c.Conversions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) TotalEnrollments(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lead_sequence_enrollments`).Scan(&n)
	return n, err
}

func (r *Repository) GlobalEmailTotals(ctx context.Context) (EmailTotals, error) {
	var t EmailTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE opened),
		       COUNT(*) FILTER (WHERE clicked)
		FROM sequence_email_logs
	`).Scan(&t.Sent, &t.Opened, &t.Clicked)
	return t, err
}

func (r *Repository) RecentActivity(ctx context.Context, since time.Time) ([]ActivityPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sent_at::date::text,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE opened),
		       COUNT(*) FILTER (WHERE clicked)
		FROM sequence_email_logs
		WHERE sent_at >= $1
		GROUP BY sent_at::date
		ORDER BY sent_at::date
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []ActivityPoint
	for rows.Next() {
		var p ActivityPoint
		if err := rows.Scan(&p.Date, &p.EmailsSent, &p.Opened, &p.Clicked); err != nil {
			return nil, err
		}
		activity = append(activity, p)
	}
	return activity, rows.Err()
}
