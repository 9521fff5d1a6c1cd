package webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"case-automation/internal/model"
	pkgResponse "case-automation/pkg/response"
)

// HandleWebhook processes one case platform notification. The cycle
// runs synchronously so the platform sees the real outcome: 200 with
// the report when everything succeeded, 500 with the report when any
// stage failed, 400 for payloads that are not valid webhooks.
func (h *Handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.security.ValidateIPAddress(c.Request); err != nil {
		h.l.Warnf(ctx, "Webhook rejected: %v", err)
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.security.ValidateToken(c.GetHeader("X-Webhook-Token")); err != nil {
		h.l.Warnf(ctx, "Webhook token verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.security.CheckRateLimit(extractIP(c.Request)); err != nil {
		h.l.Warnf(ctx, "Rate limit exceeded: %v", err)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.l.Errorf(ctx, "Failed to read webhook body: %v", err)
		pkgResponse.InternalError(c)
		return
	}

	report, err := h.automationUC.ProcessWebhook(ctx, body)
	if errors.Is(err, model.ErrInvalidPayload) {
		pkgResponse.BadRequest(c, "Not JSON")
		return
	}
	if err != nil || !report.Success {
		c.JSON(http.StatusInternalServerError, report)
		return
	}

	c.JSON(http.StatusOK, report)
}
