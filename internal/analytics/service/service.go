package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"nurture_backend/internal/analytics/repository"
	"nurture_backend/internal/analytics/transport"
	"nurture_backend/platform/apperr"
	"nurture_backend/platform/logger"
)

const (
	trendWindow    = 30 * 24 * time.Hour
	activityWindow = 7 * 24 * time.Hour
)

// Store is the aggregation surface the service reads from.
type Store interface {
	GetSequence(ctx context.Context, id uuid.UUID) (repository.SequenceRow, error)
	EnrollmentStatusCounts(ctx context.Context, sequenceID uuid.UUID) (map[string]int, error)
	SequenceEmailTotals(ctx context.Context, sequenceID uuid.UUID) (repository.EmailTotals, error)
	CountConversions(ctx context.Context, sequenceID uuid.UUID) (int, error)
	StepStats(ctx context.Context, sequenceID uuid.UUID) ([]repository.StepStats, error)
	EnrollmentTrend(ctx context.Context, sequenceID uuid.UUID, since time.Time) ([]repository.TrendPoint, error)
	SequenceConversionRows(ctx context.Context) ([]repository.ConversionRow, error)
	TotalEnrollments(ctx context.Context) (int, error)
	GlobalEmailTotals(ctx context.Context) (repository.EmailTotals, error)
	RecentActivity(ctx context.Context, since time.Time) ([]repository.ActivityPoint, error)
}

// Service assembles engagement metrics out of raw aggregation rows.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// SequenceMetrics builds the headline summary for one sequence. A sequence
// with no enrollments or sends yields all-zero metrics, not an error.
func (s *Service) SequenceMetrics(ctx context.Context, sequenceID uuid.UUID) (transport.SequenceMetrics, error) {
	seq, err := s.store.GetSequence(ctx, sequenceID)
	if err != nil {
		return transport.SequenceMetrics{}, s.mapError("analytics.sequence", err)
	}

	statusCounts, err := s.store.EnrollmentStatusCounts(ctx, sequenceID)
	if err != nil {
		return transport.SequenceMetrics{}, s.mapError("analytics.enrollment_counts", err)
	}
	total := 0
	for _, n := range statusCounts {
		total += n
	}

	totals, err := s.store.SequenceEmailTotals(ctx, sequenceID)
	if err != nil {
		return transport.SequenceMetrics{}, s.mapError("analytics.email_totals", err)
	}

	conversions, err := s.store.CountConversions(ctx, sequenceID)
	if err != nil {
		return transport.SequenceMetrics{}, s.mapError("analytics.conversions", err)
	}

	return transport.SequenceMetrics{
		SequenceID:           seq.ID.String(),
		SequenceName:         seq.Name,
		TotalEnrollments:     total,
		ActiveEnrollments:    statusCounts["active"],
		CompletedEnrollments: statusCounts["completed"],
		PausedEnrollments:    statusCounts["paused"],
		TotalEmailsSent:      totals.Sent,
		TotalOpened:          totals.Opened,
		TotalClicked:         totals.Clicked,
		OpenRate:             round1(rate(totals.Opened, totals.Sent)),
		ClickRate:            round1(rate(totals.Clicked, totals.Sent)),
		ClickToOpenRate:      round1(rate(totals.Clicked, totals.Opened)),
		Conversions:          conversions,
		ConversionRate:       round1(rate(conversions, total)),
	}, nil
}

// StepMetrics builds per-step engagement with drop-off relative to the
// previous step's sends.
func (s *Service) StepMetrics(ctx context.Context, sequenceID uuid.UUID) ([]transport.StepMetrics, error) {
	stats, err := s.store.StepStats(ctx, sequenceID)
	if err != nil {
		return nil, s.mapError("analytics.step_stats", err)
	}

	metrics := make([]transport.StepMetrics, 0, len(stats))
	previousSent := 0
	for i, st := range stats {
		dropOff := 0.0
		if i > 0 && previousSent > 0 {
			dropOff = float64(previousSent-st.Sent) / float64(previousSent) * 100
		}
		metrics = append(metrics, transport.StepMetrics{
			StepID:      st.StepID.String(),
			StepOrder:   st.StepOrder,
			SubjectEN:   st.SubjectEN,
			SubjectFR:   st.SubjectFR,
			DelayDays:   st.DelayDays,
			DelayHours:  st.DelayHours,
			EmailsSent:  st.Sent,
			Opened:      st.Opened,
			Clicked:     st.Clicked,
			OpenRate:    round1(rate(st.Opened, st.Sent)),
			ClickRate:   round1(rate(st.Clicked, st.Sent)),
			DropOffRate: round1(dropOff),
		})
		previousSent = st.Sent
	}
	return metrics, nil
}

// PerformanceReport combines the sequence summary, step breakdown, a 30 day
// enrollment trend and the conversion funnel.
func (s *Service) PerformanceReport(ctx context.Context, sequenceID uuid.UUID) (transport.PerformanceReport, error) {
	seq, err := s.SequenceMetrics(ctx, sequenceID)
	if err != nil {
		return transport.PerformanceReport{}, err
	}

	steps, err := s.StepMetrics(ctx, sequenceID)
	if err != nil {
		return transport.PerformanceReport{}, err
	}

	trendRows, err := s.store.EnrollmentTrend(ctx, sequenceID, s.now().Add(-trendWindow))
	if err != nil {
		return transport.PerformanceReport{}, s.mapError("analytics.enrollment_trend", err)
	}
	trend := make([]transport.TrendPoint, 0, len(trendRows))
	for _, p := range trendRows {
		trend = append(trend, transport.TrendPoint{Date: p.Date, Enrollments: p.Enrollments})
	}

	return transport.PerformanceReport{
		Sequence:         seq,
		Steps:            steps,
		EnrollmentTrend:  trend,
		ConversionFunnel: buildFunnel(seq),
	}, nil
}

// Compare runs an A/B comparison on conversion rate. Either side with zero
// enrollments forces a tie. The winner's improvement is its relative lift
// over the loser, 100 when the losing rate is zero.
func (s *Service) Compare(ctx context.Context, idA, idB uuid.UUID) (transport.ComparisonResult, error) {
	a, err := s.SequenceMetrics(ctx, idA)
	if err != nil {
		return transport.ComparisonResult{}, err
	}
	b, err := s.SequenceMetrics(ctx, idB)
	if err != nil {
		return transport.ComparisonResult{}, err
	}

	winner := "tie"
	improvement := 0.0
	switch {
	case a.TotalEnrollments == 0 || b.TotalEnrollments == 0:
	case a.ConversionRate > b.ConversionRate:
		winner = "A"
		improvement = lift(a.ConversionRate, b.ConversionRate)
	case b.ConversionRate > a.ConversionRate:
		winner = "B"
		improvement = lift(b.ConversionRate, a.ConversionRate)
	}

	return transport.ComparisonResult{
		SequenceA:   a,
		SequenceB:   b,
		Winner:      winner,
		Improvement: round1(improvement),
	}, nil
}

// Overall aggregates across all sequences, including the best and worst
// performers by conversion rate and a 7 day activity window.
func (s *Service) Overall(ctx context.Context) (transport.OverallAnalytics, error) {
	rows, err := s.store.SequenceConversionRows(ctx)
	if err != nil {
		return transport.OverallAnalytics{}, s.mapError("analytics.conversion_rows", err)
	}

	enrollments, err := s.store.TotalEnrollments(ctx)
	if err != nil {
		return transport.OverallAnalytics{}, s.mapError("analytics.total_enrollments", err)
	}

	totals, err := s.store.GlobalEmailTotals(ctx)
	if err != nil {
		return transport.OverallAnalytics{}, s.mapError("analytics.global_totals", err)
	}

	activityRows, err := s.store.RecentActivity(ctx, s.now().Add(-activityWindow))
	if err != nil {
		return transport.OverallAnalytics{}, s.mapError("analytics.recent_activity", err)
	}
	activity := make([]transport.ActivityPoint, 0, len(activityRows))
	for _, p := range activityRows {
		activity = append(activity, transport.ActivityPoint{
			Date:       p.Date,
			EmailsSent: p.EmailsSent,
			Opened:     p.Opened,
			Clicked:    p.Clicked,
		})
	}

	active := 0
	performances := make([]transport.SequencePerformance, 0, len(rows))
	rateSum := 0.0
	for _, row := range rows {
		if row.IsActive {
			active++
		}
		conversionRate := round1(rate(row.Conversions, row.Enrollments))
		rateSum += conversionRate
		performances = append(performances, transport.SequencePerformance{
			ID:             row.ID.String(),
			Name:           row.Name,
			ConversionRate: conversionRate,
		})
	}
	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].ConversionRate > performances[j].ConversionRate
	})

	var top, bottom *transport.SequencePerformance
	averageConversion := 0.0
	if len(performances) > 0 {
		top = &performances[0]
		bottom = &performances[len(performances)-1]
		averageConversion = rateSum / float64(len(performances))
	}

	return transport.OverallAnalytics{
		TotalSequences:           len(rows),
		ActiveSequences:          active,
		TotalEnrollments:         enrollments,
		TotalEmailsSent:          totals.Sent,
		AverageOpenRate:          round1(rate(totals.Opened, totals.Sent)),
		AverageClickRate:         round1(rate(totals.Clicked, totals.Sent)),
		AverageConversionRate:    round1(averageConversion),
		TopPerformingSequence:    top,
		BottomPerformingSequence: bottom,
		RecentActivity:           activity,
	}, nil
}

func buildFunnel(m transport.SequenceMetrics) []transport.FunnelStage {
	return []transport.FunnelStage{
		{Stage: "Enrolled", Count: m.TotalEnrollments, Percentage: 100},
		{Stage: "Received Email", Count: m.TotalEmailsSent, Percentage: share(m.TotalEmailsSent, m.TotalEnrollments)},
		{Stage: "Opened", Count: m.TotalOpened, Percentage: share(m.TotalOpened, m.TotalEnrollments)},
		{Stage: "Clicked", Count: m.TotalClicked, Percentage: share(m.TotalClicked, m.TotalEnrollments)},
		{Stage: "Converted", Count: m.Conversions, Percentage: share(m.Conversions, m.TotalEnrollments)},
	}
}

func (s *Service) mapError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("sequence not found")
	}
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindInternal, "failed to load analytics", err)
}

// rate returns num/den as a percentage, zero when the denominator is zero.
func rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// lift is the winner's relative improvement over the loser in percent.
func lift(winner, loser float64) float64 {
	if loser <= 0 {
		return 100
	}
	return (winner - loser) / loser * 100
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// share returns num/den as a whole percentage, zero when den is zero.
func share(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}
