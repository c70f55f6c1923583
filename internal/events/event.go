// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"nurture_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Dispatch Domain Events
// =============================================================================

// SequenceEmailSent is published after a step email is successfully handed to
// the mail sender and the enrollment advanced.
type SequenceEmailSent struct {
	BaseEvent
	EnrollmentID uuid.UUID `json:"enrollmentId"`
	SequenceID   uuid.UUID `json:"sequenceId"`
	StepID       uuid.UUID `json:"stepId"`
	StepOrder    int       `json:"stepOrder"`
	LeadEmail    string    `json:"leadEmail"`
}

func (e SequenceEmailSent) EventName() string { return "dispatch.email.sent" }

// EnrollmentCompleted is published when an enrollment's final step has been sent.
type EnrollmentCompleted struct {
	BaseEvent
	EnrollmentID uuid.UUID `json:"enrollmentId"`
	SequenceID   uuid.UUID `json:"sequenceId"`
	LeadID       uuid.UUID `json:"leadId"`
}

func (e EnrollmentCompleted) EventName() string { return "dispatch.enrollment.completed" }

// DispatchTickCompleted summarizes one scheduler pass over due enrollments.
type DispatchTickCompleted struct {
	BaseEvent
	Due       int           `json:"due"`
	Sent      int           `json:"sent"`
	Failed    int           `json:"failed"`
	Completed int           `json:"completed"`
	Elapsed   time.Duration `json:"elapsedMs"`
}

func (e DispatchTickCompleted) EventName() string { return "dispatch.tick.completed" }

// =============================================================================
// Opt-Out Domain Events
// =============================================================================

// LeadOptedOut is published after a lead's opt-out has been processed and its
// active enrollments cancelled.
type LeadOptedOut struct {
	BaseEvent
	LeadID               uuid.UUID `json:"leadId"`
	Reason               string    `json:"reason"`
	CancelledEnrollments int       `json:"cancelledEnrollments"`
}

func (e LeadOptedOut) EventName() string { return "optout.lead.opted_out" }

// LeadResubscribed is published after a lead's opt-out flags are cleared.
type LeadResubscribed struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadResubscribed) EventName() string { return "optout.lead.resubscribed" }
