// Package sequences provides the sequence authoring bounded context module.
// It manages stored sequences and their steps, created from built-in
// blueprints or authored directly.
package sequences

import (
	apphttp "nurture_backend/internal/http"
	"nurture_backend/internal/sequences/handler"
	"nurture_backend/internal/sequences/repository"
	"nurture_backend/internal/sequences/service"
	"nurture_backend/platform/logger"
	"nurture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sequences bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the sequences module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sequences"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module reads.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts sequence authoring routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/sequence-templates", m.handler.ListTemplates)
	ctx.V1.POST("/sequences/from-template/:key", m.handler.InstantiateTemplate)
	ctx.V1.POST("/sequences", m.handler.Create)
	ctx.V1.GET("/sequences", m.handler.List)
	ctx.V1.GET("/sequences/:id", m.handler.GetByID)
	ctx.V1.POST("/sequences/:id/deactivate", m.handler.Deactivate)
	ctx.V1.POST("/sequences/:id/steps", m.handler.AddStep)
}

var _ apphttp.Module = (*Module)(nil)
