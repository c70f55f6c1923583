// Package analytics provides read-only engagement reporting over sequences,
// enrollments and email logs: per-sequence summaries, step breakdowns,
// conversion funnels, A/B comparison and the overall dashboard view.
package analytics

import (
	"nurture_backend/internal/analytics/handler"
	"nurture_backend/internal/analytics/repository"
	"nurture_backend/internal/analytics/service"
	apphttp "nurture_backend/internal/http"
	"nurture_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts the analytics read endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/sequences/:id/analytics", m.handler.Metrics)
	ctx.V1.GET("/sequences/:id/analytics/report", m.handler.Report)
	ctx.V1.GET("/analytics/compare", m.handler.Compare)
	ctx.V1.GET("/analytics/overview", m.handler.Overall)
}

var _ apphttp.Module = (*Module)(nil)
