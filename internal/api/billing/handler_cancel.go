package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "tradejournal-billing/internal/domain/billing"
)

func (h *Handler) CancelSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rec, err := h.gateway.CancelAtPeriodEnd(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                   true,
		"cancel_at_period_end": rec.CancelAtPeriodEnd,
		"current_period_end":   domain.FormatISO(rec.CurrentPeriodEnd),
	})
}
