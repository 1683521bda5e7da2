package plans

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	stripelib "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tradejournal-billing/internal/domain/plans"
)

const planTTL = 10 * time.Minute

type PriceFetcher interface {
	GetPrice(ctx context.Context, id string) (*stripelib.Price, error)
}

// Handler serves the configured plan. The provider answer is memoized per
// process so the public subscribe page does not hit the provider per view.
type Handler struct {
	prices  PriceFetcher
	priceID string
	log     *zap.Logger

	mu        sync.RWMutex
	cached    *plans.Plan
	fetchedAt time.Time
	fetches   singleflight.Group
	now       func() time.Time
}

func NewHandler(prices PriceFetcher, priceID string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{prices: prices, priceID: priceID, log: log.Named("plans_api"), now: time.Now}
}

func (h *Handler) GetPlan(c *gin.Context) {
	p, err := h.plan(c.Request.Context())
	if err != nil {
		h.log.Error("load plan failed", zap.String("price_id", h.priceID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch plan"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not available"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) plan(ctx context.Context) (*plans.Plan, error) {
	if p, ok := h.fresh(); ok {
		return p, nil
	}

	// One provider call per expiry; waiters share its answer or its error.
	res, err, _ := h.fetches.Do(h.priceID, func() (any, error) {
		if p, ok := h.fresh(); ok {
			return p, nil
		}
		return h.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return res.(*plans.Plan), nil
}

func (h *Handler) fresh() (*plans.Plan, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cached != nil && h.now().Sub(h.fetchedAt) < planTTL {
		return h.cached, true
	}
	return nil, false
}

func (h *Handler) fetch(ctx context.Context) (*plans.Plan, error) {
	price, err := h.prices.GetPrice(ctx, h.priceID)
	if err != nil {
		return nil, err
	}
	p, ok := plans.FromStripePrice(price)
	if !ok {
		return nil, nil
	}

	h.mu.Lock()
	h.cached, h.fetchedAt = &p, h.now()
	h.mu.Unlock()
	return &p, nil
}
