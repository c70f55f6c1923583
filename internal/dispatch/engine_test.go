package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nurture_backend/internal/email"
	enrollrepo "nurture_backend/internal/enrollments/repository"
	"nurture_backend/internal/events"
	"nurture_backend/internal/leads"
	seqrepo "nurture_backend/internal/sequences/repository"
	"nurture_backend/platform/logger"
)

type testConfig struct {
	batchSize      int
	workers        int
	sendsPerSecond float64
}

func (c testConfig) GetDispatchBatchSize() int          { return c.batchSize }
func (c testConfig) GetDispatchWorkers() int            { return c.workers }
func (c testConfig) GetDispatchSendsPerSecond() float64 { return c.sendsPerSecond }

type fakeStore struct {
	mu         sync.Mutex
	due        []enrollrepo.Enrollment
	logs       map[uuid.UUID]*enrollrepo.EmailLog
	advanced   map[uuid.UUID]uuid.UUID
	advancedAt map[uuid.UUID]time.Time
	completed  map[uuid.UUID]bool
}

func newFakeStore(due ...enrollrepo.Enrollment) *fakeStore {
	return &fakeStore{
		due:        due,
		logs:       make(map[uuid.UUID]*enrollrepo.EmailLog),
		advanced:   make(map[uuid.UUID]uuid.UUID),
		advancedAt: make(map[uuid.UUID]time.Time),
		completed:  make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) ClaimDue(_ context.Context, limit int, _ time.Duration) ([]enrollrepo.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeStore) Advance(_ context.Context, id, stepID uuid.UUID, nextEmailAt time.Time) (enrollrepo.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advanced[id] = stepID
	f.advancedAt[id] = nextEmailAt
	return enrollrepo.Enrollment{ID: id, CurrentStepID: &stepID, Status: enrollrepo.StatusActive, NextEmailAt: &nextEmailAt}, nil
}

func (f *fakeStore) Complete(_ context.Context, id uuid.UUID) (enrollrepo.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = true
	return enrollrepo.Enrollment{ID: id, Status: enrollrepo.StatusCompleted}, nil
}

func (f *fakeStore) CreateEmailLog(_ context.Context, enrollmentID, stepID uuid.UUID) (enrollrepo.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &enrollrepo.EmailLog{ID: uuid.New(), EnrollmentID: enrollmentID, StepID: stepID, CreatedAt: time.Now()}
	f.logs[l.ID] = l
	return *l, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.logs[id]
	if !ok {
		return enrollrepo.ErrNotFound
	}
	now := time.Now()
	l.SentAt = &now
	return nil
}

type fakeSteps struct {
	steps map[uuid.UUID]seqrepo.Step
}

func (f *fakeSteps) GetStep(_ context.Context, stepID uuid.UUID) (seqrepo.Step, error) {
	step, ok := f.steps[stepID]
	if !ok {
		return seqrepo.Step{}, seqrepo.ErrNotFound
	}
	return step, nil
}

func (f *fakeSteps) GetStepByOrder(_ context.Context, sequenceID uuid.UUID, order int) (seqrepo.Step, error) {
	for _, step := range f.steps {
		if step.SequenceID == sequenceID && step.StepOrder == order {
			return step, nil
		}
	}
	return seqrepo.Step{}, seqrepo.ErrNotFound
}

type fakeLeads struct {
	leads map[uuid.UUID]leads.Lead
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (leads.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leads.Lead{}, leads.ErrNotFound
	}
	return lead, nil
}

type sentMessage struct {
	msg          email.Message
	logExistedAt bool
}

type fakeSender struct {
	mu      sync.Mutex
	store   *fakeStore
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[msg.ToEmail]; ok {
		return err
	}
	f.store.mu.Lock()
	logExists := len(f.store.logs) > 0
	f.store.mu.Unlock()
	f.sent = append(f.sent, sentMessage{msg: msg, logExistedAt: logExists})
	return nil
}

type passthroughDecorator struct{}

func (passthroughDecorator) Decorate(body string, logID uuid.UUID, unsubscribeURL string) (string, error) {
	return strings.ReplaceAll(body, "{{unsubscribeUrl}}", unsubscribeURL) +
		`<img src="pixel-` + logID.String() + `">`, nil
}

type fakeLinker struct{}

func (fakeLinker) URL(leadID uuid.UUID, _ string) (string, error) {
	return "https://app.example.com/unsubscribe/" + leadID.String(), nil
}

type fixture struct {
	engine *Engine
	store  *fakeStore
	sender *fakeSender
}

func active(leadID, sequenceID, stepID uuid.UUID) enrollrepo.Enrollment {
	due := time.Now().Add(-time.Minute)
	return enrollrepo.Enrollment{
		ID:            uuid.New(),
		LeadID:        leadID,
		SequenceID:    sequenceID,
		CurrentStepID: &stepID,
		Status:        enrollrepo.StatusActive,
		NextEmailAt:   &due,
	}
}

func newFixture(store *fakeStore, steps *fakeSteps, leadReader *fakeLeads, sender *fakeSender) *fixture {
	log := logger.New("development")
	engine := New(
		testConfig{batchSize: 50, workers: 4},
		store, steps, leadReader, sender,
		passthroughDecorator{}, fakeLinker{},
		events.NewInMemoryBus(log), log,
	)
	return &fixture{engine: engine, store: store, sender: sender}
}

func TestTickAdvancesNonFinalStep(t *testing.T) {
	leadID, sequenceID := uuid.New(), uuid.New()
	step1 := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 1, SubjectEN: "Hello {{firstName}}", BodyEN: "<p>Hi {{firstName}}</p>", SubjectFR: "s", BodyFR: "b"}
	step2 := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 2, DelayDays: 3, DelayHours: 2, SubjectEN: "s2", BodyEN: "b2", SubjectFR: "s2", BodyFR: "b2"}
	enrollment := active(leadID, sequenceID, step1.ID)

	store := newFakeStore(enrollment)
	sender := &fakeSender{store: store}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step1.ID: step1, step2.ID: step2}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{leadID: {ID: leadID, FirstName: "Marie", Email: "marie@example.com"}}},
		sender,
	)
	fixed := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	fx.engine.now = func() time.Time { return fixed }

	sent, err := fx.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	if got := store.advanced[enrollment.ID]; got != step2.ID {
		t.Fatalf("advanced to %v, want %v", got, step2.ID)
	}
	wantNext := fixed.Add(3*24*time.Hour + 2*time.Hour)
	if got := store.advancedAt[enrollment.ID]; !got.Equal(wantNext) {
		t.Fatalf("next_email_at = %v, want %v", got, wantNext)
	}
	if store.completed[enrollment.ID] {
		t.Fatalf("enrollment must not complete with a next step pending")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.msg.Subject != "Hello Marie" {
		t.Fatalf("subject = %q", msg.msg.Subject)
	}
	if !msg.logExistedAt {
		t.Fatalf("email log must exist before the transport call")
	}
	if !strings.Contains(msg.msg.HTML, "https://app.example.com/unsubscribe/"+leadID.String()) {
		t.Fatalf("missing unsubscribe link: %q", msg.msg.HTML)
	}
	if !strings.Contains(msg.msg.HTML, "pixel-") {
		t.Fatalf("missing pixel: %q", msg.msg.HTML)
	}

	for _, l := range store.logs {
		if l.SentAt == nil {
			t.Fatalf("log sent_at not stamped")
		}
	}
}

func TestTickCompletesFinalStep(t *testing.T) {
	leadID, sequenceID := uuid.New(), uuid.New()
	step := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 2, SubjectEN: "s", BodyEN: "b", SubjectFR: "s", BodyFR: "b"}
	enrollment := active(leadID, sequenceID, step.ID)

	store := newFakeStore(enrollment)
	sender := &fakeSender{store: store}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step.ID: step}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{leadID: {ID: leadID, Email: "x@example.com"}}},
		sender,
	)

	sent, err := fx.engine.Tick(context.Background())
	if err != nil || sent != 1 {
		t.Fatalf("Tick() = %d, %v", sent, err)
	}
	if !store.completed[enrollment.ID] {
		t.Fatalf("final step must complete the enrollment")
	}
	if _, ok := store.advanced[enrollment.ID]; ok {
		t.Fatalf("completed enrollment must not advance")
	}
}

func TestTickSendFailureLeavesStateUntouched(t *testing.T) {
	leadID, sequenceID := uuid.New(), uuid.New()
	step := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 1, SubjectEN: "s", BodyEN: "b", SubjectFR: "s", BodyFR: "b"}
	enrollment := active(leadID, sequenceID, step.ID)

	store := newFakeStore(enrollment)
	sender := &fakeSender{store: store, failFor: map[string]error{"x@example.com": errors.New("smtp: connection refused")}}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step.ID: step}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{leadID: {ID: leadID, Email: "x@example.com"}}},
		sender,
	)

	sent, err := fx.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if len(store.advanced) != 0 || len(store.completed) != 0 {
		t.Fatalf("failed send must not advance or complete")
	}
	for _, l := range store.logs {
		if l.SentAt != nil {
			t.Fatalf("failed send must not stamp sent_at")
		}
	}
	if len(store.logs) != 1 {
		t.Fatalf("log row must still be created before the send, got %d", len(store.logs))
	}
}

func TestTickIsolatesFailures(t *testing.T) {
	sequenceID := uuid.New()
	step := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 1, SubjectEN: "s", BodyEN: "b", SubjectFR: "s", BodyFR: "b"}

	leadBad, leadGood1, leadGood2 := uuid.New(), uuid.New(), uuid.New()
	store := newFakeStore(
		active(leadBad, sequenceID, step.ID),
		active(leadGood1, sequenceID, step.ID),
		active(leadGood2, sequenceID, step.ID),
	)
	sender := &fakeSender{store: store, failFor: map[string]error{"bad@example.com": errors.New("bounce")}}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step.ID: step}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{
			leadBad:   {ID: leadBad, Email: "bad@example.com"},
			leadGood1: {ID: leadGood1, Email: "good1@example.com"},
			leadGood2: {ID: leadGood2, Email: "good2@example.com"},
		}},
		sender,
	)

	sent, err := fx.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(store.completed) != 2 {
		t.Fatalf("completed = %d, want 2", len(store.completed))
	}
}

func TestTickUsesPreferredLanguage(t *testing.T) {
	leadID, sequenceID := uuid.New(), uuid.New()
	step := seqrepo.Step{
		ID: uuid.New(), SequenceID: sequenceID, StepOrder: 1,
		SubjectEN: "English subject", BodyEN: "<p>english</p>",
		SubjectFR: "Sujet français", BodyFR: "<p>français</p>",
	}
	enrollment := active(leadID, sequenceID, step.ID)

	store := newFakeStore(enrollment)
	sender := &fakeSender{store: store}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step.ID: step}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{leadID: {ID: leadID, Email: "x@example.com", PreferredLanguage: "fr"}}},
		sender,
	)

	if _, err := fx.engine.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d, want 1", len(sender.sent))
	}
	if sender.sent[0].msg.Subject != "Sujet français" {
		t.Fatalf("subject = %q, want french", sender.sent[0].msg.Subject)
	}
	if !strings.Contains(sender.sent[0].msg.HTML, "français") {
		t.Fatalf("body not french: %q", sender.sent[0].msg.HTML)
	}
}

func TestTickNoDueEnrollments(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{store: store}
	fx := newFixture(store, &fakeSteps{steps: map[uuid.UUID]seqrepo.Step{}}, &fakeLeads{leads: map[uuid.UUID]leads.Lead{}}, sender)

	sent, err := fx.engine.Tick(context.Background())
	if err != nil || sent != 0 {
		t.Fatalf("Tick() = %d, %v, want 0, nil", sent, err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no messages expected")
	}
}

func TestTickSkipsOptedOutLead(t *testing.T) {
	leadID, sequenceID := uuid.New(), uuid.New()
	step := seqrepo.Step{ID: uuid.New(), SequenceID: sequenceID, StepOrder: 1, SubjectEN: "s", BodyEN: "b", SubjectFR: "s", BodyFR: "b"}
	enrollment := active(leadID, sequenceID, step.ID)

	store := newFakeStore(enrollment)
	sender := &fakeSender{store: store}
	fx := newFixture(store,
		&fakeSteps{steps: map[uuid.UUID]seqrepo.Step{step.ID: step}},
		&fakeLeads{leads: map[uuid.UUID]leads.Lead{leadID: {ID: leadID, Email: "x@example.com", OptedOut: true}}},
		sender,
	)

	sent, err := fx.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("opted-out lead must not receive email")
	}
	if len(store.logs) != 0 {
		t.Fatalf("no email log expected for a skipped send")
	}
	if store.completed[enrollment.ID] || store.advanced[enrollment.ID] != uuid.Nil {
		t.Fatalf("enrollment state must not change on skip")
	}
}
