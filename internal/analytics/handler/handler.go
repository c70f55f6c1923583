package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nurture_backend/internal/analytics/service"
	"nurture_backend/platform/httpkit"
)

const msgInvalidID = "invalid sequence ID"

// Handler serves read-only analytics endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Metrics returns the headline summary for one sequence.
// GET /api/v1/sequences/:id/analytics
func (h *Handler) Metrics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.SequenceMetrics(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Report returns the full performance report including steps, trend and funnel.
// GET /api/v1/sequences/:id/analytics/report
func (h *Handler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.PerformanceReport(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Compare runs an A/B comparison between two sequences.
// GET /api/v1/analytics/compare?a=<id>&b=<id>
func (h *Handler) Compare(c *gin.Context) {
	idA, errA := uuid.Parse(c.Query("a"))
	idB, errB := uuid.Parse(c.Query("b"))
	if errA != nil || errB != nil {
		httpkit.Error(c, http.StatusBadRequest, "query parameters a and b must be sequence IDs", nil)
		return
	}

	result, err := h.svc.Compare(c.Request.Context(), idA, idB)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Overall returns aggregate analytics across all sequences.
// GET /api/v1/analytics/overview
func (h *Handler) Overall(c *gin.Context) {
	result, err := h.svc.Overall(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
