package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "tradejournal-billing/internal/domain/billing"
)

// GetSubscriptionStatus always computes a fresh decision; it is the
// authoritative read behind the client-side page guard.
func (h *Handler) GetSubscriptionStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.decisions.Fresh(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("access decision failed", zap.String("user_id", userID), zap.Error(err))
		writeError(c, Internal("Failed to load subscription status", err))
		return
	}
	c.JSON(http.StatusOK, d)
}

type SubscriptionDTO struct {
	StripeSubscriptionID string  `json:"stripe_subscription_id"`
	Status               string  `json:"status"`
	PriceID              string  `json:"price_id"`
	ProductID            string  `json:"product_id"`
	Quantity             int64   `json:"quantity"`
	Currency             string  `json:"currency"`
	CurrentPeriodStart   *string `json:"current_period_start"`
	CurrentPeriodEnd     *string `json:"current_period_end"`
	TrialEnd             *string `json:"trial_end"`
	CancelAt             *string `json:"cancel_at"`
	CanceledAt           *string `json:"canceled_at"`
	EndedAt              *string `json:"ended_at"`
	CancelAtPeriodEnd    bool    `json:"cancel_at_period_end"`
	UpdatedAt            *string `json:"updated_at"`
}

func ToSubscriptionDTO(s domain.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		StripeSubscriptionID: s.StripeSubscriptionID,
		Status:               string(s.Status),
		PriceID:              s.PriceID,
		ProductID:            s.ProductID,
		Quantity:             s.Quantity,
		Currency:             s.Currency,
		CurrentPeriodStart:   domain.FormatISO(s.CurrentPeriodStart),
		CurrentPeriodEnd:     domain.FormatISO(s.CurrentPeriodEnd),
		TrialEnd:             domain.FormatISO(s.TrialEnd),
		CancelAt:             domain.FormatISO(s.CancelAt),
		CanceledAt:           domain.FormatISO(s.CanceledAt),
		EndedAt:              domain.FormatISO(s.EndedAt),
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		UpdatedAt:            domain.FormatISO(&s.UpdatedAt),
	}
}

// GetBillingHistory lists every subscription the user has had, newest first.
func (h *Handler) GetBillingHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.gateway.History(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]SubscriptionDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToSubscriptionDTO(r))
	}
	c.JSON(http.StatusOK, out)
}
