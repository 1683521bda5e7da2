package admin

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradejournal-billing/internal/domain/billing"
)

type SubscriptionLister interface {
	ListForUser(ctx context.Context, userID string) ([]billing.Subscription, error)
	CountByStatus(ctx context.Context) (map[billing.Status]int64, error)
}

type EventLister interface {
	Recent(ctx context.Context, limit int) ([]billing.ProcessedEvent, error)
	Count(ctx context.Context) (int64, error)
}

type AdminSubscription struct {
	ID                   string  `json:"id"`
	UserID               string  `json:"user_id"`
	StripeSubscriptionID string  `json:"stripe_subscription_id"`
	StripeCustomerID     string  `json:"stripe_customer_id"`
	Status               string  `json:"status"`
	PriceID              string  `json:"price_id"`
	CurrentPeriodEnd     *string `json:"current_period_end"`
	CancelAtPeriodEnd    bool    `json:"cancel_at_period_end"`
	EndedAt              *string `json:"ended_at"`
	LatestInvoiceID      string  `json:"latest_invoice_id,omitempty"`
	CreatedAt            *string `json:"created_at"`
	UpdatedAt            *string `json:"updated_at"`
}

type AdminEvent struct {
	EventID   string  `json:"event_id"`
	EventType string  `json:"event_type"`
	CreatedAt *string `json:"created_at"`
}

type Dashboard struct {
	Subscriptions      map[billing.Status]int64 `json:"subscriptions"`
	SubscriptionsTotal int64                    `json:"subscriptions_total"`
	ProcessedEvents    int64                    `json:"processed_events"`
	LatestEvent        *AdminEvent              `json:"latest_event"`
}

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type Handler struct {
	subs   SubscriptionLister
	events EventLister
}

func NewHandler(subs SubscriptionLister, events EventLister) *Handler {
	return &Handler{subs: subs, events: events}
}

// AdminDashboard summarizes stored subscriptions by status and the webhook
// events processed so far.
func (h *Handler) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	byStatus, err := h.subs.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}
	processed, err := h.events.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	latest, err := h.events.Recent(ctx, 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	out := Dashboard{Subscriptions: byStatus, ProcessedEvents: processed}
	for _, n := range byStatus {
		out.SubscriptionsTotal += n
	}
	if len(latest) > 0 {
		e := toAdminEvent(latest[0])
		out.LatestEvent = &e
	}
	c.JSON(http.StatusOK, out)
}

// ListSubscriptions shows every subscription row a user has, for support.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	rows, err := h.subs.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}

	out := make([]AdminSubscription, 0, len(rows))
	for _, s := range rows {
		created, updated := s.CreatedAt, s.UpdatedAt
		out = append(out, AdminSubscription{
			ID:                   s.ID,
			UserID:               s.UserID,
			StripeSubscriptionID: s.StripeSubscriptionID,
			StripeCustomerID:     s.StripeCustomerID,
			Status:               string(s.Status),
			PriceID:              s.PriceID,
			CurrentPeriodEnd:     billing.FormatISO(s.CurrentPeriodEnd),
			CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
			EndedAt:              billing.FormatISO(s.EndedAt),
			LatestInvoiceID:      s.LatestInvoiceID,
			CreatedAt:            billing.FormatISO(&created),
			UpdatedAt:            billing.FormatISO(&updated),
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListEvents shows the most recently claimed webhook event markers.
func (h *Handler) ListEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.events.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	out := make([]AdminEvent, 0, len(events))
	for _, e := range events {
		out = append(out, toAdminEvent(e))
	}
	c.JSON(http.StatusOK, out)
}

func toAdminEvent(e billing.ProcessedEvent) AdminEvent {
	created := e.CreatedAt
	return AdminEvent{
		EventID:   e.EventID,
		EventType: e.EventType,
		CreatedAt: billing.FormatISO(&created),
	}
}
