package unsubscribe

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nurture_backend/platform/apperr"
	"nurture_backend/platform/httpkit"
	"nurture_backend/platform/logger"
)

const confirmationPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Unsubscribed</title></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 600px; margin: 40px auto; padding: 20px; color: #1e293b;">
  <h2>You have been unsubscribed</h2>
  <p>You will no longer receive follow-up emails from us.</p>
  <p style="font-size: 12px; color: #64748b;">Changed your mind? Contact us and we will re-enable your subscription.</p>
</body>
</html>`

const invalidTokenPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invalid link</title></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 600px; margin: 40px auto; padding: 20px; color: #1e293b;">
  <h2>This link is no longer valid</h2>
  <p>The unsubscribe link you followed could not be verified.</p>
</body>
</html>`

// Handler serves the public opt-out endpoints and the management API.
type Handler struct {
	codec *TokenCodec
	svc   *Service
	log   *logger.Logger
}

func NewHandler(codec *TokenCodec, svc *Service, log *logger.Logger) *Handler {
	return &Handler{codec: codec, svc: svc, log: log}
}

type optOutForm struct {
	Reason string `form:"reason" json:"reason"`
}

// OptOut verifies the token, processes the opt-out, and renders a
// confirmation page.
// GET/POST /unsubscribe/:token
func (h *Handler) OptOut(c *gin.Context) {
	leadID, err := h.codec.Decode(c.Param("token"))
	if err != nil {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(invalidTokenPage))
		return
	}

	var form optOutForm
	_ = c.ShouldBind(&form)

	if err := h.svc.ProcessOptOut(c.Request.Context(), leadID, form.Reason); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(invalidTokenPage))
			return
		}
		h.log.Error("opt-out processing failed", "lead_id", leadID, "error", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(invalidTokenPage))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(confirmationPage))
}

// Status reports whether a lead is opted out.
// GET /api/v1/leads/:id/opt-out
func (h *Handler) Status(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	optedOut, err := h.svc.IsOptedOut(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leadId": leadID, "optedOut": optedOut})
}

// Resubscribe clears a lead's opt-out fields.
// POST /api/v1/leads/:id/resubscribe
func (h *Handler) Resubscribe(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	if err := h.svc.Resubscribe(c.Request.Context(), leadID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leadId": leadID, "optedOut": false})
}
