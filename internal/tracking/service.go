package tracking

import (
	"context"

	"github.com/google/uuid"

	"nurture_backend/platform/logger"
)

// EmailLogStore is the subset of the email log repository the tracking
// service writes to. Both writes are atomic conditional updates so
// concurrent pixel fires cannot race each other.
type EmailLogStore interface {
	MarkOpened(ctx context.Context, id uuid.UUID) error
	MarkClicked(ctx context.Context, id uuid.UUID) error
}

// Service records open and click events idempotently.
type Service struct {
	logs EmailLogStore
	log  *logger.Logger
}

func NewService(logs EmailLogStore, log *logger.Logger) *Service {
	return &Service{logs: logs, log: log}
}

// RecordOpen sets the log's opened flag. Repeated opens of the same
// email keep the first timestamp.
func (s *Service) RecordOpen(ctx context.Context, logID uuid.UUID) error {
	if err := s.logs.MarkOpened(ctx, logID); err != nil {
		s.log.DatabaseError("tracking.record_open", err)
		return err
	}
	return nil
}

// RecordClick sets the log's clicked flag and backfills the opened flag.
func (s *Service) RecordClick(ctx context.Context, logID uuid.UUID) error {
	if err := s.logs.MarkClicked(ctx, logID); err != nil {
		s.log.DatabaseError("tracking.record_click", err)
		return err
	}
	return nil
}
