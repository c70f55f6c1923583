package unsubscribe

import (
	"nurture_backend/internal/events"
	apphttp "nurture_backend/internal/http"
	"nurture_backend/platform/config"
	"nurture_backend/platform/logger"
)

// Module is the unsubscribe bounded context module implementing http.Module.
type Module struct {
	codec   *TokenCodec
	service *Service
	handler *Handler
}

// NewModule wires the token codec and opt-out service.
func NewModule(cfg config.UnsubscribeConfig, leadsRepo LeadStore, enrollments EnrollmentCanceller, bus events.Bus, log *logger.Logger) *Module {
	codec := NewTokenCodec(cfg.GetUnsubscribeSecret(), cfg.GetUnsubscribeBaseURL())
	svc := NewService(leadsRepo, enrollments, bus, log)

	return &Module{
		codec:   codec,
		service: svc,
		handler: NewHandler(codec, svc, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "unsubscribe"
}

// Codec returns the token codec so the dispatch layer can build opt-out
// links for email footers.
func (m *Module) Codec() *TokenCodec {
	return m.codec
}

// Service returns the opt-out service.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the public opt-out endpoints and the management API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/unsubscribe/:token", m.handler.OptOut)
	ctx.Public.POST("/unsubscribe/:token", m.handler.OptOut)
	ctx.V1.GET("/leads/:id/opt-out", m.handler.Status)
	ctx.V1.POST("/leads/:id/resubscribe", m.handler.Resubscribe)
}

var _ apphttp.Module = (*Module)(nil)
