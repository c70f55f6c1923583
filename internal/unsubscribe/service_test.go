package unsubscribe

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"nurture_backend/internal/events"
	"nurture_backend/internal/leads"
	"nurture_backend/platform/apperr"
	"nurture_backend/platform/logger"
)

type fakeLeadStore struct {
	leads map[uuid.UUID]*leads.Lead
}

func (f *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (leads.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leads.Lead{}, leads.ErrNotFound
	}
	return *lead, nil
}

func (f *fakeLeadStore) SetOptOut(_ context.Context, id uuid.UUID, reason string) (leads.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leads.Lead{}, leads.ErrNotFound
	}
	now := time.Now()
	lead.OptedOut = true
	lead.OptedOutAt = &now
	lead.OptOutReason = &reason
	return *lead, nil
}

func (f *fakeLeadStore) ClearOptOut(_ context.Context, id uuid.UUID) (leads.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leads.Lead{}, leads.ErrNotFound
	}
	lead.OptedOut = false
	lead.OptedOutAt = nil
	lead.OptOutReason = nil
	return *lead, nil
}

func (f *fakeLeadStore) IsOptedOut(_ context.Context, id uuid.UUID) (bool, error) {
	lead, ok := f.leads[id]
	if !ok {
		return false, leads.ErrNotFound
	}
	return lead.OptedOut, nil
}

type fakeCanceller struct {
	cancelled map[uuid.UUID]int
}

func (f *fakeCanceller) CancelActiveByLead(_ context.Context, leadID uuid.UUID) (int, error) {
	n := f.cancelled[leadID]
	f.cancelled[leadID] = 0
	return n, nil
}

func newTestService(store *fakeLeadStore, canceller *fakeCanceller) *Service {
	log := logger.New("development")
	return NewService(store, canceller, events.NewInMemoryBus(log), log)
}

func TestProcessOptOutCascades(t *testing.T) {
	leadID := uuid.New()
	store := &fakeLeadStore{leads: map[uuid.UUID]*leads.Lead{leadID: {ID: leadID, Email: "x@example.com"}}}
	canceller := &fakeCanceller{cancelled: map[uuid.UUID]int{leadID: 2}}
	svc := newTestService(store, canceller)

	if err := svc.ProcessOptOut(context.Background(), leadID, "too many emails"); err != nil {
		t.Fatalf("ProcessOptOut() error = %v", err)
	}

	lead := store.leads[leadID]
	if !lead.OptedOut || lead.OptedOutAt == nil {
		t.Fatalf("lead not flagged: %+v", lead)
	}
	if lead.OptOutReason == nil || *lead.OptOutReason != "too many emails" {
		t.Fatalf("reason = %v", lead.OptOutReason)
	}
	if canceller.cancelled[leadID] != 0 {
		t.Fatalf("active enrollments were not cancelled")
	}
}

func TestProcessOptOutUnknownLead(t *testing.T) {
	svc := newTestService(&fakeLeadStore{leads: map[uuid.UUID]*leads.Lead{}}, &fakeCanceller{cancelled: map[uuid.UUID]int{}})

	err := svc.ProcessOptOut(context.Background(), uuid.New(), "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestResubscribeClearsFlags(t *testing.T) {
	leadID := uuid.New()
	now := time.Now()
	reason := "spam"
	store := &fakeLeadStore{leads: map[uuid.UUID]*leads.Lead{leadID: {
		ID: leadID, OptedOut: true, OptedOutAt: &now, OptOutReason: &reason,
	}}}
	svc := newTestService(store, &fakeCanceller{cancelled: map[uuid.UUID]int{}})

	if err := svc.Resubscribe(context.Background(), leadID); err != nil {
		t.Fatalf("Resubscribe() error = %v", err)
	}
	lead := store.leads[leadID]
	if lead.OptedOut || lead.OptedOutAt != nil || lead.OptOutReason != nil {
		t.Fatalf("opt-out fields not cleared: %+v", lead)
	}

	optedOut, err := svc.IsOptedOut(context.Background(), leadID)
	if err != nil || optedOut {
		t.Fatalf("IsOptedOut() = %v, %v", optedOut, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret", "https://app.example.com")
	leadID := uuid.New()

	token, err := codec.Issue(leadID, "lead@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded != leadID {
		t.Fatalf("decoded = %v, want %v", decoded, leadID)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	leadID := uuid.New()
	token, err := NewTokenCodec("secret-a", "https://app.example.com").Issue(leadID, "x@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = NewTokenCodec("secret-b", "https://app.example.com").Decode(token)
	if !apperr.Is(err, apperr.KindDecode) {
		t.Fatalf("Decode() error = %v, want decode failure", err)
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	codec := NewTokenCodec("secret", "https://app.example.com")
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Decode(raw); !apperr.Is(err, apperr.KindDecode) {
			t.Fatalf("Decode(%q) error = %v, want decode failure", raw, err)
		}
	}
}

func TestUnsubscribeURL(t *testing.T) {
	codec := NewTokenCodec("secret", "https://app.example.com/")
	leadID := uuid.New()

	link, err := codec.URL(leadID, "x@example.com")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	const prefix = "https://app.example.com/unsubscribe/"
	if len(link) <= len(prefix) || link[:len(prefix)] != prefix {
		t.Fatalf("link = %q", link)
	}
	decoded, err := codec.Decode(link[len(prefix):])
	if err != nil || decoded != leadID {
		t.Fatalf("decoded = %v, err = %v", decoded, err)
	}
}
