package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nurture_backend/internal/enrollments/repository"
	"nurture_backend/internal/enrollments/transport"
	"nurture_backend/internal/leads"
	seqrepo "nurture_backend/internal/sequences/repository"
	"nurture_backend/platform/apperr"
	"nurture_backend/platform/logger"
)

// LeadReader provides the lead lookups the enrollment flow needs.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leads.Lead, error)
}

// SequenceReader provides step lookups in the owning sequence.
type SequenceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (seqrepo.Sequence, error)
	GetStepByOrder(ctx context.Context, sequenceID uuid.UUID, order int) (seqrepo.Step, error)
}

// EnrollmentStore provides enrollment persistence.
type EnrollmentStore interface {
	Create(ctx context.Context, leadID, sequenceID, currentStepID uuid.UUID, nextEmailAt time.Time) (repository.Enrollment, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Enrollment, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Enrollment, error)
}

// Service creates enrollments and computes first send times. Duplicate
// enrollment of the same lead in the same sequence is a caller concern.
type Service struct {
	store     EnrollmentStore
	sequences SequenceReader
	leadsRepo LeadReader
	log       *logger.Logger
	now       func() time.Time
}

func New(store EnrollmentStore, sequences SequenceReader, leadsRepo LeadReader, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		sequences: sequences,
		leadsRepo: leadsRepo,
		log:       log,
		now:       time.Now,
	}
}

// StepDelay converts a step's day and hour delay into a duration.
func StepDelay(delayDays, delayHours int) time.Duration {
	return time.Duration(delayDays)*24*time.Hour + time.Duration(delayHours)*time.Hour
}

// Enroll binds a lead to a sequence at step 1.
func (s *Service) Enroll(ctx context.Context, req transport.EnrollRequest) (transport.EnrollmentResponse, error) {
	if _, err := s.leadsRepo.GetByID(ctx, req.LeadID); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return transport.EnrollmentResponse{}, apperr.NotFound("lead not found")
		}
		return transport.EnrollmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if _, err := s.sequences.GetByID(ctx, req.SequenceID); err != nil {
		if errors.Is(err, seqrepo.ErrNotFound) {
			return transport.EnrollmentResponse{}, apperr.NotFound("sequence not found")
		}
		return transport.EnrollmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load sequence", err)
	}

	firstStep, err := s.sequences.GetStepByOrder(ctx, req.SequenceID, 1)
	if err != nil {
		if errors.Is(err, seqrepo.ErrNotFound) {
			return transport.EnrollmentResponse{}, apperr.InvalidState("sequence has no steps")
		}
		return transport.EnrollmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load first step", err)
	}

	nextEmailAt := s.now().Add(StepDelay(firstStep.DelayDays, firstStep.DelayHours))

	enrollment, err := s.store.Create(ctx, req.LeadID, req.SequenceID, firstStep.ID, nextEmailAt)
	if err != nil {
		return transport.EnrollmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create enrollment", err)
	}

	s.log.Info("lead enrolled",
		"enrollment_id", enrollment.ID,
		"lead_id", req.LeadID,
		"sequence_id", req.SequenceID,
		"next_email_at", nextEmailAt,
	)
	return toResponse(enrollment), nil
}

// GetByID returns one enrollment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EnrollmentResponse, error) {
	enrollment, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.EnrollmentResponse{}, apperr.NotFound("enrollment not found")
		}
		return transport.EnrollmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load enrollment", err)
	}
	return toResponse(enrollment), nil
}

// ListByLead returns every enrollment of a lead, newest first.
func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) (transport.EnrollmentListResponse, error) {
	items, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return transport.EnrollmentListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list enrollments", err)
	}
	resp := transport.EnrollmentListResponse{Items: make([]transport.EnrollmentResponse, 0, len(items))}
	for _, e := range items {
		resp.Items = append(resp.Items, toResponse(e))
	}
	resp.Total = len(resp.Items)
	return resp, nil
}

func toResponse(e repository.Enrollment) transport.EnrollmentResponse {
	resp := transport.EnrollmentResponse{
		ID:            e.ID,
		LeadID:        e.LeadID,
		SequenceID:    e.SequenceID,
		CurrentStepID: e.CurrentStepID,
		Status:        e.Status,
		EnrolledAt:    e.EnrolledAt.Format(time.RFC3339),
	}
	if e.NextEmailAt != nil {
		next := e.NextEmailAt.Format(time.RFC3339)
		resp.NextEmailAt = &next
	}
	if e.CompletedAt != nil {
		completed := e.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}
