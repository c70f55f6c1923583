// Package enrollments provides the enrollment bounded context module.
// It binds leads into sequences and owns the email log records that the
// dispatch and tracking layers write to.
package enrollments

import (
	"nurture_backend/internal/enrollments/handler"
	"nurture_backend/internal/enrollments/repository"
	"nurture_backend/internal/enrollments/service"
	apphttp "nurture_backend/internal/http"
	"nurture_backend/internal/leads"
	seqrepo "nurture_backend/internal/sequences/repository"
	"nurture_backend/platform/logger"
	"nurture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the enrollments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the enrollments module with all its dependencies.
func NewModule(pool *pgxpool.Pool, sequences *seqrepo.Repository, leadsRepo *leads.Repository, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, sequences, leadsRepo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrollments"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository so the dispatch and tracking layers
// can claim due rows and write email logs.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts enrollment routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/enrollments", m.handler.Enroll)
	ctx.V1.GET("/enrollments/:id", m.handler.GetByID)
	ctx.V1.GET("/leads/:id/enrollments", m.handler.ListByLead)
}

var _ apphttp.Module = (*Module)(nil)
