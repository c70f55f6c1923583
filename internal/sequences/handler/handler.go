package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nurture_backend/internal/sequences/service"
	"nurture_backend/internal/sequences/transport"
	"nurture_backend/platform/httpkit"
	"nurture_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid sequence ID"
)

// Handler handles HTTP requests for sequence authoring.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListTemplates returns the built-in sequence blueprints.
// GET /api/v1/sequence-templates
func (h *Handler) ListTemplates(c *gin.Context) {
	httpkit.OK(c, gin.H{"items": h.svc.ListTemplates()})
}

// InstantiateTemplate copies a blueprint into the store.
// POST /api/v1/sequences/from-template/:key
func (h *Handler) InstantiateTemplate(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		httpkit.Error(c, http.StatusBadRequest, "template key is required", nil)
		return
	}

	result, err := h.svc.InstantiateTemplate(c.Request.Context(), key)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Create stores a directly authored sequence.
// POST /api/v1/sequences
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// List returns all sequences.
// GET /api/v1/sequences
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID returns one sequence with its steps.
// GET /api/v1/sequences/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Deactivate marks a sequence inactive.
// POST /api/v1/sequences/:id/deactivate
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Deactivate(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddStep appends a step to a sequence.
// POST /api/v1/sequences/:id/steps
func (h *Handler) AddStep(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.AddStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddStep(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
