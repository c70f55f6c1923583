package transport

import "github.com/google/uuid"

// CreateStepRequest is one authored step in a create request.
type CreateStepRequest struct {
	DelayDays  int    `json:"delayDays" validate:"min=0"`
	DelayHours int    `json:"delayHours" validate:"min=0"`
	SubjectEN  string `json:"subjectEn" validate:"required"`
	SubjectFR  string `json:"subjectFr" validate:"required"`
	BodyEN     string `json:"bodyEn" validate:"required"`
	BodyFR     string `json:"bodyFr" validate:"required"`
}

// CreateSequenceRequest contains data for authoring a sequence directly.
type CreateSequenceRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=200"`
	Description string              `json:"description" validate:"max=1000"`
	TriggerType string              `json:"triggerType" validate:"omitempty,oneof=new_lead manual"`
	Steps       []CreateStepRequest `json:"steps" validate:"omitempty,dive"`
}

// AddStepRequest appends a step to an existing sequence.
type AddStepRequest struct {
	DelayDays  int    `json:"delayDays" validate:"min=0"`
	DelayHours int    `json:"delayHours" validate:"min=0"`
	SubjectEN  string `json:"subjectEn" validate:"required"`
	SubjectFR  string `json:"subjectFr" validate:"required"`
	BodyEN     string `json:"bodyEn" validate:"required"`
	BodyFR     string `json:"bodyFr" validate:"required"`
}

// StepResponse represents a sequence step in API responses.
type StepResponse struct {
	ID         uuid.UUID `json:"id"`
	SequenceID uuid.UUID `json:"sequenceId"`
	StepOrder  int       `json:"stepOrder"`
	DelayDays  int       `json:"delayDays"`
	DelayHours int       `json:"delayHours"`
	SubjectEN  string    `json:"subjectEn"`
	SubjectFR  string    `json:"subjectFr"`
	BodyEN     string    `json:"bodyEn"`
	BodyFR     string    `json:"bodyFr"`
}

// SequenceResponse represents a sequence in API responses.
type SequenceResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	TriggerType string         `json:"triggerType"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Steps       []StepResponse `json:"steps,omitempty"`
}

// SequenceListResponse wraps a list of sequences.
type SequenceListResponse struct {
	Items []SequenceResponse `json:"items"`
	Total int                `json:"total"`
}

// TemplateStepResponse describes one blueprint step.
type TemplateStepResponse struct {
	DelayDays  int    `json:"delayDays"`
	DelayHours int    `json:"delayHours"`
	SubjectEN  string `json:"subjectEn"`
	SubjectFR  string `json:"subjectFr"`
}

// TemplateResponse describes one built-in sequence blueprint.
type TemplateResponse struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	TriggerType string                 `json:"triggerType"`
	Steps       []TemplateStepResponse `json:"steps"`
}
