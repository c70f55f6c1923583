package tracking

import (
	apphttp "nurture_backend/internal/http"
	"nurture_backend/platform/config"
	"nurture_backend/platform/logger"
)

// Module is the tracking bounded context module implementing http.Module.
type Module struct {
	codec   *Codec
	urls    *URLBuilder
	service *Service
	handler *Handler
}

// NewModule wires the token codec, URL builder, and event recorder.
func NewModule(cfg config.TrackingConfig, logs EmailLogStore, log *logger.Logger) *Module {
	codec := NewCodec(cfg.GetTrackingSecret())
	urls := NewURLBuilder(cfg.GetTrackingBaseURL(), codec)
	svc := NewService(logs, log)

	return &Module{
		codec:   codec,
		urls:    urls,
		service: svc,
		handler: NewHandler(codec, urls, svc, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tracking"
}

// URLs returns the URL builder so the dispatch layer can decorate
// outbound bodies.
func (m *Module) URLs() *URLBuilder {
	return m.urls
}

// Service returns the event recorder.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the public pixel and click endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/t/open/:token", m.handler.Open)
	ctx.Public.GET("/t/click/:token", m.handler.Click)
}

var _ apphttp.Module = (*Module)(nil)
