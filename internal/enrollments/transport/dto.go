package transport

import "github.com/google/uuid"

// EnrollRequest binds a lead into a sequence.
type EnrollRequest struct {
	LeadID     uuid.UUID `json:"leadId" validate:"required"`
	SequenceID uuid.UUID `json:"sequenceId" validate:"required"`
}

// EnrollmentResponse represents an enrollment in API responses.
type EnrollmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	SequenceID    uuid.UUID  `json:"sequenceId"`
	CurrentStepID *uuid.UUID `json:"currentStepId,omitempty"`
	Status        string     `json:"status"`
	NextEmailAt   *string    `json:"nextEmailAt,omitempty"`
	EnrolledAt    string     `json:"enrolledAt"`
	CompletedAt   *string    `json:"completedAt,omitempty"`
}

// EnrollmentListResponse wraps a list of enrollments.
type EnrollmentListResponse struct {
	Items []EnrollmentResponse `json:"items"`
	Total int                  `json:"total"`
}
