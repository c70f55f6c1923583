// Package webhook broadcasts domain events to external endpoints (Slack,
// Discord or generic JSON receivers) configured in a YAML registry.
package webhook

import (
	"context"

	"github.com/gin-gonic/gin"

	"nurture_backend/internal/events"
	apphttp "nurture_backend/internal/http"
	"nurture_backend/platform/config"
	"nurture_backend/platform/httpkit"
	"nurture_backend/platform/logger"
)

// broadcastEvents are the bus events relayed to external endpoints.
var broadcastEvents = []string{
	events.SequenceEmailSent{}.EventName(),
	events.EnrollmentCompleted{}.EventName(),
	events.DispatchTickCompleted{}.EventName(),
	events.LeadOptedOut{}.EventName(),
	events.LeadResubscribed{}.EventName(),
}

// Module wires the broadcaster to the event bus and exposes a read endpoint
// listing the configured registry.
type Module struct {
	registry    *Registry
	broadcaster *Broadcaster
}

// NewModule loads the registry and subscribes the broadcaster to the bus.
func NewModule(cfg config.WebhookConfig, bus events.Bus, log *logger.Logger) (*Module, error) {
	registry, err := LoadRegistry(cfg.GetWebhookConfigPath())
	if err != nil {
		return nil, err
	}

	m := &Module{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, cfg.GetWebhookTimeout(), log),
	}

	handler := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		m.broadcaster.Broadcast(ctx, event.EventName(), event)
		return nil
	})
	for _, name := range broadcastEvents {
		bus.Subscribe(name, handler)
	}

	log.Info("webhook broadcaster initialized", "endpoints", len(registry.Endpoints))
	return m, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// Broadcaster returns the broadcaster for direct use.
func (m *Module) Broadcaster() *Broadcaster {
	return m.broadcaster
}

// RegisterRoutes mounts the registry read endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/webhook-endpoints", m.listEndpoints)
}

type endpointView struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Events []string `json:"events"`
}

// listEndpoints returns the configured endpoints without their URLs.
// GET /api/v1/webhook-endpoints
func (m *Module) listEndpoints(c *gin.Context) {
	views := make([]endpointView, 0, len(m.registry.Endpoints))
	for _, ep := range m.registry.Endpoints {
		views = append(views, endpointView{Name: ep.Name, Kind: ep.Kind, Events: ep.Events})
	}
	httpkit.OK(c, gin.H{"items": views})
}

var _ apphttp.Module = (*Module)(nil)
