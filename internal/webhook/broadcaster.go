package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nurture_backend/platform/logger"
)

// DeliveryResult records the outcome of one endpoint delivery.
type DeliveryResult struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Status   int    `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Broadcaster fans domain events out to the registered endpoints.
type Broadcaster struct {
	registry *Registry
	http     *http.Client
	log      *logger.Logger
}

func NewBroadcaster(registry *Registry, timeout time.Duration, log *logger.Logger) *Broadcaster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Broadcaster{
		registry: registry,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Broadcast delivers the event payload to every subscribed endpoint and
// returns per-endpoint results. Endpoints not subscribed to the event are
// skipped silently. A failed delivery never fails the broadcast.
func (b *Broadcaster) Broadcast(ctx context.Context, eventName string, payload any) []DeliveryResult {
	endpoints := b.registry.For(eventName)
	if len(endpoints) == 0 {
		return nil
	}

	results := make([]DeliveryResult, 0, len(endpoints))
	for _, ep := range endpoints {
		result := DeliveryResult{Endpoint: ep.Name}

		status, err := b.deliver(ctx, ep, eventName, payload)
		result.Status = status
		if err != nil {
			result.Error = err.Error()
			b.log.Warn("webhook delivery failed", "endpoint", ep.Name, "event", eventName, "error", err)
		} else {
			result.Success = true
			b.log.Info("webhook delivered", "endpoint", ep.Name, "event", eventName, "status", status)
		}
		results = append(results, result)
	}
	return results
}

func (b *Broadcaster) deliver(ctx context.Context, ep Endpoint, eventName string, payload any) (int, error) {
	body, err := buildBody(ep.Kind, eventName, payload)
	if err != nil {
		return 0, fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp.StatusCode, nil
}

// buildBody shapes the JSON body per endpoint kind. Slack and Discord get a
// single text field summarizing the event; generic endpoints get the full
// payload in an envelope.
func buildBody(kind, eventName string, payload any) ([]byte, error) {
	switch kind {
	case KindSlack:
		return json.Marshal(map[string]string{"text": summarize(eventName, payload)})
	case KindDiscord:
		return json.Marshal(map[string]string{"content": summarize(eventName, payload)})
	default:
		return json.Marshal(map[string]any{
			"event":     eventName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      payload,
		})
	}
}

func summarize(eventName string, payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return eventName
	}
	return fmt.Sprintf("%s: %s", eventName, data)
}
