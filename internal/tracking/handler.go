package tracking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nurture_backend/platform/logger"
)

// Transparent 1x1 GIF served for every pixel request.
var gifData = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
	0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0xff, 0xff, 0xff, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the public pixel and click endpoints. Both are hit by
// arbitrary mail clients and must never surface an error to the user.
type Handler struct {
	codec *Codec
	urls  *URLBuilder
	svc   *Service
	log   *logger.Logger
}

func NewHandler(codec *Codec, urls *URLBuilder, svc *Service, log *logger.Logger) *Handler {
	return &Handler{codec: codec, urls: urls, svc: svc, log: log}
}

// Open records an email open and responds with the pixel regardless of
// the outcome.
// GET /t/open/:token
func (h *Handler) Open(c *gin.Context) {
	if token, err := h.codec.Decode(c.Param("token")); err == nil && token.Kind == KindOpen {
		if err := h.svc.RecordOpen(c.Request.Context(), token.LogID); err != nil {
			h.log.Warn("open event not recorded", "log_id", token.LogID, "error", err)
		}
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/gif", gifData)
}

// Click records a click and redirects to the original URL. Undecodable
// tokens redirect to the safe default instead of erroring.
// GET /t/click/:token
func (h *Handler) Click(c *gin.Context) {
	token, err := h.codec.Decode(c.Param("token"))
	if err != nil || token.Kind != KindClick {
		c.Redirect(http.StatusFound, h.urls.SafeRedirect(""))
		return
	}

	if err := h.svc.RecordClick(c.Request.Context(), token.LogID); err != nil {
		h.log.Warn("click event not recorded", "log_id", token.LogID, "error", err)
	}
	c.Redirect(http.StatusFound, h.urls.SafeRedirect(token.URL))
}
