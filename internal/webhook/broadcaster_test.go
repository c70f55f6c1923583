package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nurture_backend/platform/logger"
)

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhooks.yaml")
	content := `endpoints:
  - name: ops-slack
    url: https://hooks.slack.example/T000/B000
    kind: slack
    events: ["dispatch.enrollment.completed"]
  - name: audit
    url: https://audit.example/hook
    events: ["*"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Endpoints) != 2 {
		t.Fatalf("got %d endpoints, want 2", len(reg.Endpoints))
	}
	if reg.Endpoints[1].Kind != KindGeneric {
		t.Fatalf("missing kind should default to generic, got %q", reg.Endpoints[1].Kind)
	}

	matched := reg.For("dispatch.enrollment.completed")
	if len(matched) != 2 {
		t.Fatalf("got %d subscribed endpoints, want 2", len(matched))
	}
	matched = reg.For("optout.lead.opted_out")
	if len(matched) != 1 || matched[0].Name != "audit" {
		t.Fatalf("wildcard endpoint should match any event, got %+v", matched)
	}
}

func TestLoadRegistryRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhooks.yaml")
	content := `endpoints:
  - name: bad
    url: https://example.com/hook
    kind: teams
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Endpoints) != 0 {
		t.Fatalf("expected empty registry, got %d endpoints", len(reg.Endpoints))
	}
}

func TestBroadcastShapesBodies(t *testing.T) {
	var slackBody, genericBody map[string]any

	slackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&slackBody); err != nil {
			t.Errorf("decode slack body: %v", err)
		}
	}))
	defer slackSrv.Close()

	genericSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&genericBody); err != nil {
			t.Errorf("decode generic body: %v", err)
		}
	}))
	defer genericSrv.Close()

	reg := &Registry{Endpoints: []Endpoint{
		{Name: "slack", URL: slackSrv.URL, Kind: KindSlack, Events: []string{"*"}},
		{Name: "generic", URL: genericSrv.URL, Kind: KindGeneric, Events: []string{"*"}},
	}}
	b := NewBroadcaster(reg, time.Second, logger.New("development"))

	results := b.Broadcast(context.Background(), "optout.lead.opted_out", map[string]any{"leadId": "abc"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Fatalf("delivery to %s failed: %s", r.Endpoint, r.Error)
		}
	}

	text, ok := slackBody["text"].(string)
	if !ok || !strings.Contains(text, "optout.lead.opted_out") {
		t.Fatalf("slack body missing event summary: %v", slackBody)
	}
	if genericBody["event"] != "optout.lead.opted_out" {
		t.Fatalf("generic body event = %v", genericBody["event"])
	}
	data, ok := genericBody["data"].(map[string]any)
	if !ok || data["leadId"] != "abc" {
		t.Fatalf("generic body data = %v", genericBody["data"])
	}
}

func TestBroadcastSkipsUnsubscribed(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	reg := &Registry{Endpoints: []Endpoint{
		{Name: "completed-only", URL: srv.URL, Kind: KindGeneric, Events: []string{"dispatch.enrollment.completed"}},
	}}
	b := NewBroadcaster(reg, time.Second, logger.New("development"))

	results := b.Broadcast(context.Background(), "dispatch.email.sent", nil)
	if results != nil {
		t.Fatalf("expected no results for unsubscribed event, got %+v", results)
	}
	if hits.Load() != 0 {
		t.Fatalf("endpoint hit %d times, want 0", hits.Load())
	}
}

func TestBroadcastReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := &Registry{Endpoints: []Endpoint{
		{Name: "broken", URL: srv.URL, Kind: KindGeneric, Events: []string{"*"}},
	}}
	b := NewBroadcaster(reg, time.Second, logger.New("development"))

	results := b.Broadcast(context.Background(), "dispatch.email.sent", nil)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Success {
		t.Fatal("expected failed delivery")
	}
	if results[0].Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", results[0].Status)
	}
	if !strings.Contains(results[0].Error, "boom") {
		t.Fatalf("error should carry response body, got %q", results[0].Error)
	}
}
