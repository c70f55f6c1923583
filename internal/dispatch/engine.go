// Package dispatch implements the periodic sweep over due enrollments:
// render, decorate, send, log, and advance or complete each one.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"nurture_backend/internal/catalog"
	"nurture_backend/internal/email"
	enrollrepo "nurture_backend/internal/enrollments/repository"
	enrollsvc "nurture_backend/internal/enrollments/service"
	"nurture_backend/internal/events"
	"nurture_backend/internal/leads"
	seqrepo "nurture_backend/internal/sequences/repository"
	"nurture_backend/platform/config"
	"nurture_backend/platform/logger"
)

const defaultLanguage = "en"

// claimLease is how long a claimed enrollment stays invisible to other
// scheduler instances. A failed send is retried after the lease passes.
const claimLease = 5 * time.Minute

// EnrollmentStore is the enrollment and email log persistence the
// engine drives.
type EnrollmentStore interface {
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]enrollrepo.Enrollment, error)
	Advance(ctx context.Context, id, stepID uuid.UUID, nextEmailAt time.Time) (enrollrepo.Enrollment, error)
	Complete(ctx context.Context, id uuid.UUID) (enrollrepo.Enrollment, error)
	CreateEmailLog(ctx context.Context, enrollmentID, stepID uuid.UUID) (enrollrepo.EmailLog, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// StepReader resolves steps within a sequence.
type StepReader interface {
	GetStep(ctx context.Context, stepID uuid.UUID) (seqrepo.Step, error)
	GetStepByOrder(ctx context.Context, sequenceID uuid.UUID, order int) (seqrepo.Step, error)
}

// LeadReader resolves the recipient of an enrollment.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leads.Lead, error)
}

// Decorator rewrites an outbound body with tracking and the
// unsubscribe link.
type Decorator interface {
	Decorate(body string, logID uuid.UUID, unsubscribeURL string) (string, error)
}

// UnsubscribeLinker builds per-lead opt-out links.
type UnsubscribeLinker interface {
	URL(leadID uuid.UUID, email string) (string, error)
}

// Engine runs dispatch ticks. Enrollments within a tick are processed
// by a bounded worker pool; each one is claimed exactly once, and a
// failure in one never aborts the others.
type Engine struct {
	enrollments EnrollmentStore
	steps       StepReader
	leadsRepo   LeadReader
	sender      email.Sender
	decorator   Decorator
	unsubLinks  UnsubscribeLinker
	bus         events.Bus
	log         *logger.Logger

	batchSize int
	workers   int
	limiter   *rate.Limiter
	now       func() time.Time
}

func New(
	cfg config.DispatchConfig,
	enrollments EnrollmentStore,
	steps StepReader,
	leadsRepo LeadReader,
	sender email.Sender,
	decorator Decorator,
	unsubLinks UnsubscribeLinker,
	bus events.Bus,
	log *logger.Logger,
) *Engine {
	workers := cfg.GetDispatchWorkers()
	if workers < 1 {
		workers = 1
	}
	batchSize := cfg.GetDispatchBatchSize()
	if batchSize < 1 {
		batchSize = 50
	}

	limit := rate.Inf
	if perSecond := cfg.GetDispatchSendsPerSecond(); perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Engine{
		enrollments: enrollments,
		steps:       steps,
		leadsRepo:   leadsRepo,
		sender:      sender,
		decorator:   decorator,
		unsubLinks:  unsubLinks,
		bus:         bus,
		log:         log,
		batchSize:   batchSize,
		workers:     workers,
		limiter:     rate.NewLimiter(limit, 1),
		now:         time.Now,
	}
}

// Tick processes every currently-due active enrollment once and returns
// how many were successfully sent and advanced.
func (e *Engine) Tick(ctx context.Context) (int, error) {
	start := e.now()

	due, err := e.enrollments.ClaimDue(ctx, e.batchSize, claimLease)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	var sent, failed, completed atomic.Int64

	group := new(errgroup.Group)
	group.SetLimit(e.workers)
	for _, enrollment := range due {
		enrollment := enrollment
		group.Go(func() error {
			if err := e.limiter.Wait(ctx); err != nil {
				failed.Add(1)
				return nil
			}
			outcome := e.process(ctx, enrollment)
			if outcome.sent {
				sent.Add(1)
			} else {
				failed.Add(1)
			}
			if outcome.completed {
				completed.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	elapsed := e.now().Sub(start)
	e.log.Info("dispatch tick finished",
		"due", len(due),
		"sent", sent.Load(),
		"failed", failed.Load(),
		"completed", completed.Load(),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	e.bus.Publish(ctx, events.DispatchTickCompleted{
		BaseEvent: events.NewBaseEvent(),
		Due:       len(due),
		Sent:      int(sent.Load()),
		Failed:    int(failed.Load()),
		Completed: int(completed.Load()),
		Elapsed:   elapsed,
	})

	return int(sent.Load()), nil
}

type outcome struct {
	sent      bool
	completed bool
}

func (e *Engine) process(ctx context.Context, enrollment enrollrepo.Enrollment) outcome {
	enrollmentID := enrollment.ID.String()

	if enrollment.CurrentStepID == nil {
		e.log.DispatchEvent("dispatch.skip", enrollmentID, false, "active enrollment without current step")
		return outcome{}
	}

	lead, err := e.leadsRepo.GetByID(ctx, enrollment.LeadID)
	if err != nil {
		e.log.DispatchEvent("dispatch.resolve_lead", enrollmentID, false, err.Error())
		return outcome{}
	}
	if lead.OptedOut {
		// Opt-out cascades cancel active enrollments, but a claim taken just
		// before the cascade must still not send.
		e.log.DispatchEvent("dispatch.skip", enrollmentID, false, "lead opted out")
		return outcome{}
	}

	step, err := e.steps.GetStep(ctx, *enrollment.CurrentStepID)
	if err != nil {
		e.log.DispatchEvent("dispatch.resolve_step", enrollmentID, false, err.Error())
		return outcome{}
	}

	language := lead.PreferredLanguage
	if language == "" {
		language = defaultLanguage
	}
	recipient := catalog.Recipient{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Company:   lead.Company,
		Email:     lead.Email,
	}
	subject := catalog.Render(catalog.PickLocalized(language, step.SubjectEN, step.SubjectFR), recipient)
	body := catalog.Render(catalog.PickLocalized(language, step.BodyEN, step.BodyFR), recipient)

	emailLog, err := e.enrollments.CreateEmailLog(ctx, enrollment.ID, step.ID)
	if err != nil {
		e.log.DispatchEvent("dispatch.create_log", enrollmentID, false, err.Error())
		return outcome{}
	}

	unsubscribeURL, err := e.unsubLinks.URL(lead.ID, lead.Email)
	if err != nil {
		e.log.DispatchEvent("dispatch.unsubscribe_link", enrollmentID, false, err.Error())
		return outcome{}
	}

	decorated, err := e.decorator.Decorate(catalog.WrapBody(body), emailLog.ID, unsubscribeURL)
	if err != nil {
		e.log.DispatchEvent("dispatch.decorate", enrollmentID, false, err.Error())
		return outcome{}
	}

	msg := email.Message{
		ToEmail: lead.Email,
		ToName:  recipientName(lead),
		Subject: subject,
		HTML:    decorated,
	}
	if err := e.sender.Send(ctx, msg); err != nil {
		e.log.DispatchEvent("dispatch.send", enrollmentID, false, err.Error())
		return outcome{}
	}

	if err := e.enrollments.MarkSent(ctx, emailLog.ID); err != nil {
		e.log.DatabaseError("dispatch.mark_sent", err)
	}

	return e.advance(ctx, enrollment, step, lead)
}

// advance moves the enrollment to the next step or completes it.
func (e *Engine) advance(ctx context.Context, enrollment enrollrepo.Enrollment, step seqrepo.Step, lead leads.Lead) outcome {
	enrollmentID := enrollment.ID.String()

	next, err := e.steps.GetStepByOrder(ctx, enrollment.SequenceID, step.StepOrder+1)
	switch {
	case err == nil:
		nextAt := e.now().Add(enrollsvc.StepDelay(next.DelayDays, next.DelayHours))
		if _, err := e.enrollments.Advance(ctx, enrollment.ID, next.ID, nextAt); err != nil {
			e.log.DispatchEvent("dispatch.advance", enrollmentID, false, err.Error())
			return outcome{sent: true}
		}
		e.log.DispatchEvent("dispatch.advance", enrollmentID, true, "")
		e.publishSent(ctx, enrollment, step, lead)
		return outcome{sent: true}

	case isNotFound(err):
		if _, err := e.enrollments.Complete(ctx, enrollment.ID); err != nil {
			e.log.DispatchEvent("dispatch.complete", enrollmentID, false, err.Error())
			return outcome{sent: true}
		}
		e.log.DispatchEvent("dispatch.complete", enrollmentID, true, "")
		e.publishSent(ctx, enrollment, step, lead)
		e.bus.Publish(ctx, events.EnrollmentCompleted{
			BaseEvent:    events.NewBaseEvent(),
			EnrollmentID: enrollment.ID,
			SequenceID:   enrollment.SequenceID,
			LeadID:       enrollment.LeadID,
		})
		return outcome{sent: true, completed: true}

	default:
		e.log.DispatchEvent("dispatch.next_step", enrollmentID, false, err.Error())
		return outcome{sent: true}
	}
}

func (e *Engine) publishSent(ctx context.Context, enrollment enrollrepo.Enrollment, step seqrepo.Step, lead leads.Lead) {
	e.bus.Publish(ctx, events.SequenceEmailSent{
		BaseEvent:    events.NewBaseEvent(),
		EnrollmentID: enrollment.ID,
		SequenceID:   enrollment.SequenceID,
		StepID:       step.ID,
		StepOrder:    step.StepOrder,
		LeadEmail:    lead.Email,
	})
}

func recipientName(lead leads.Lead) string {
	switch {
	case lead.FirstName != "" && lead.LastName != "":
		return lead.FirstName + " " + lead.LastName
	case lead.FirstName != "":
		return lead.FirstName
	default:
		return lead.LastName
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, seqrepo.ErrNotFound)
}
