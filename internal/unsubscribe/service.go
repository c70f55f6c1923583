package unsubscribe

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"nurture_backend/internal/events"
	"nurture_backend/internal/leads"
	"nurture_backend/platform/apperr"
	"nurture_backend/platform/logger"
)

// LeadStore is the subset of the leads repository the opt-out flow uses.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (leads.Lead, error)
	SetOptOut(ctx context.Context, id uuid.UUID, reason string) (leads.Lead, error)
	ClearOptOut(ctx context.Context, id uuid.UUID) (leads.Lead, error)
	IsOptedOut(ctx context.Context, id uuid.UUID) (bool, error)
}

// EnrollmentCanceller cancels a lead's active enrollments.
type EnrollmentCanceller interface {
	CancelActiveByLead(ctx context.Context, leadID uuid.UUID) (int, error)
}

// Service processes opt-outs and re-subscriptions. Opt-out is the single
// authoritative cancellation path for enrollments.
type Service struct {
	leadsRepo   LeadStore
	enrollments EnrollmentCanceller
	bus         events.Bus
	log         *logger.Logger
}

func NewService(leadsRepo LeadStore, enrollments EnrollmentCanceller, bus events.Bus, log *logger.Logger) *Service {
	return &Service{leadsRepo: leadsRepo, enrollments: enrollments, bus: bus, log: log}
}

// ProcessOptOut flags the lead and cancels every active enrollment.
func (s *Service) ProcessOptOut(ctx context.Context, leadID uuid.UUID, reason string) error {
	if _, err := s.leadsRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if _, err := s.leadsRepo.SetOptOut(ctx, leadID, reason); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to flag opt-out", err)
	}

	cancelled, err := s.enrollments.CancelActiveByLead(ctx, leadID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to cancel enrollments", err)
	}

	s.log.Info("lead opted out", "lead_id", leadID, "cancelled_enrollments", cancelled, "reason", reason)
	s.bus.Publish(ctx, events.LeadOptedOut{
		BaseEvent:            events.NewBaseEvent(),
		LeadID:               leadID,
		Reason:               reason,
		CancelledEnrollments: cancelled,
	})
	return nil
}

// Resubscribe clears the opt-out fields. Previously cancelled
// enrollments stay cancelled; re-enrollment is a separate action.
func (s *Service) Resubscribe(ctx context.Context, leadID uuid.UUID) error {
	if _, err := s.leadsRepo.ClearOptOut(ctx, leadID); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to clear opt-out", err)
	}

	s.log.Info("lead resubscribed", "lead_id", leadID)
	s.bus.Publish(ctx, events.LeadResubscribed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
	})
	return nil
}

// IsOptedOut reports whether the lead has opted out of nurture emails.
func (s *Service) IsOptedOut(ctx context.Context, leadID uuid.UUID) (bool, error) {
	optedOut, err := s.leadsRepo.IsOptedOut(ctx, leadID)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return false, apperr.NotFound("lead not found")
		}
		return false, apperr.Wrap(apperr.KindInternal, "failed to read opt-out flag", err)
	}
	return optedOut, nil
}
