package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nurture_backend/internal/catalog"
	"nurture_backend/internal/sequences/repository"
	"nurture_backend/internal/sequences/transport"
	"nurture_backend/platform/apperr"
	"nurture_backend/platform/logger"
)

// Service provides business logic for sequence authoring and catalog instantiation.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create stores a directly authored sequence with its steps.
func (s *Service) Create(ctx context.Context, req transport.CreateSequenceRequest) (transport.SequenceResponse, error) {
	triggerType := req.TriggerType
	if triggerType == "" {
		triggerType = "manual"
	}

	steps := make([]repository.CreateStepParams, 0, len(req.Steps))
	for _, sp := range req.Steps {
		steps = append(steps, repository.CreateStepParams{
			DelayDays:  sp.DelayDays,
			DelayHours: sp.DelayHours,
			SubjectEN:  sp.SubjectEN,
			SubjectFR:  sp.SubjectFR,
			BodyEN:     sp.BodyEN,
			BodyFR:     sp.BodyFR,
		})
	}

	seq, created, err := s.repo.Create(ctx, repository.CreateSequenceParams{
		Name:        req.Name,
		Description: req.Description,
		TriggerType: triggerType,
		Steps:       steps,
	})
	if err != nil {
		return transport.SequenceResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create sequence", err)
	}

	s.log.Info("sequence created", "sequence_id", seq.ID, "steps", len(created))
	return toResponse(seq, created), nil
}

// InstantiateTemplate copies a built-in blueprint into the store.
func (s *Service) InstantiateTemplate(ctx context.Context, key string) (transport.SequenceResponse, error) {
	bp, ok := catalog.Get(key)
	if !ok {
		return transport.SequenceResponse{}, apperr.NotFound("unknown template")
	}

	steps := make([]repository.CreateStepParams, 0, len(bp.Steps))
	for _, sp := range bp.Steps {
		steps = append(steps, repository.CreateStepParams{
			DelayDays:  sp.DelayDays,
			DelayHours: sp.DelayHours,
			SubjectEN:  sp.SubjectEN,
			SubjectFR:  sp.SubjectFR,
			BodyEN:     sp.BodyEN,
			BodyFR:     sp.BodyFR,
		})
	}

	seq, created, err := s.repo.Create(ctx, repository.CreateSequenceParams{
		Name:        bp.Name,
		Description: bp.Description,
		TriggerType: bp.TriggerType,
		Steps:       steps,
	})
	if err != nil {
		return transport.SequenceResponse{}, apperr.Wrap(apperr.KindInternal, "failed to instantiate template", err)
	}

	s.log.Info("template instantiated", "template", key, "sequence_id", seq.ID)
	return toResponse(seq, created), nil
}

// ListTemplates exposes the built-in blueprints.
func (s *Service) ListTemplates() []transport.TemplateResponse {
	items := make([]transport.TemplateResponse, 0, len(catalog.Keys()))
	for _, key := range catalog.Keys() {
		bp, _ := catalog.Get(key)
		steps := make([]transport.TemplateStepResponse, 0, len(bp.Steps))
		for _, sp := range bp.Steps {
			steps = append(steps, transport.TemplateStepResponse{
				DelayDays:  sp.DelayDays,
				DelayHours: sp.DelayHours,
				SubjectEN:  sp.SubjectEN,
				SubjectFR:  sp.SubjectFR,
			})
		}
		items = append(items, transport.TemplateResponse{
			Key:         key,
			Name:        bp.Name,
			Description: bp.Description,
			TriggerType: bp.TriggerType,
			Steps:       steps,
		})
	}
	return items
}

// GetByID returns one sequence with its steps.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.SequenceResponse, error) {
	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.SequenceResponse{}, mapRepoError(err)
	}
	steps, err := s.repo.ListSteps(ctx, id)
	if err != nil {
		return transport.SequenceResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load steps", err)
	}
	return toResponse(seq, steps), nil
}

// List returns all sequences without their steps.
func (s *Service) List(ctx context.Context) (transport.SequenceListResponse, error) {
	sequences, err := s.repo.List(ctx)
	if err != nil {
		return transport.SequenceListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list sequences", err)
	}
	items := make([]transport.SequenceResponse, 0, len(sequences))
	for _, seq := range sequences {
		items = append(items, toResponse(seq, nil))
	}
	return transport.SequenceListResponse{Items: items, Total: len(items)}, nil
}

// Deactivate marks a sequence inactive. Existing enrollments keep running.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (transport.SequenceResponse, error) {
	seq, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return transport.SequenceResponse{}, mapRepoError(err)
	}
	s.log.Info("sequence deactivated", "sequence_id", id)
	return toResponse(seq, nil), nil
}

// AddStep appends a step to a sequence at the next position.
func (s *Service) AddStep(ctx context.Context, sequenceID uuid.UUID, req transport.AddStepRequest) (transport.StepResponse, error) {
	if _, err := s.repo.GetByID(ctx, sequenceID); err != nil {
		return transport.StepResponse{}, mapRepoError(err)
	}
	step, err := s.repo.AddStep(ctx, sequenceID, repository.CreateStepParams{
		DelayDays:  req.DelayDays,
		DelayHours: req.DelayHours,
		SubjectEN:  req.SubjectEN,
		SubjectFR:  req.SubjectFR,
		BodyEN:     req.BodyEN,
		BodyFR:     req.BodyFR,
	})
	if err != nil {
		return transport.StepResponse{}, apperr.Wrap(apperr.KindInternal, "failed to add step", err)
	}
	return toStepResponse(step), nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "sequence not found", err)
	}
	return apperr.Wrap(apperr.KindInternal, "sequence store failure", err)
}

func toStepResponse(step repository.Step) transport.StepResponse {
	return transport.StepResponse{
		ID:         step.ID,
		SequenceID: step.SequenceID,
		StepOrder:  step.StepOrder,
		DelayDays:  step.DelayDays,
		DelayHours: step.DelayHours,
		SubjectEN:  step.SubjectEN,
		SubjectFR:  step.SubjectFR,
		BodyEN:     step.BodyEN,
		BodyFR:     step.BodyFR,
	}
}

func toResponse(seq repository.Sequence, steps []repository.Step) transport.SequenceResponse {
	resp := transport.SequenceResponse{
		ID:          seq.ID,
		Name:        seq.Name,
		Description: seq.Description,
		TriggerType: seq.TriggerType,
		IsActive:    seq.IsActive,
		CreatedAt:   seq.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   seq.UpdatedAt.Format(time.RFC3339),
	}
	for _, step := range steps {
		resp.Steps = append(resp.Steps, toStepResponse(step))
	}
	return resp
}
