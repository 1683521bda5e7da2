package stripewebhooks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	stripelib "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/billing"
	"tradejournal-billing/internal/infra/metrics"
	stripeinfra "tradejournal-billing/internal/infra/stripe"
)

const maxBodyBytes = 65536

type EventClaimer interface {
	Claim(ctx context.Context, eventID, eventType string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripelib.Subscription, error)
}

type SubscriptionProjector interface {
	Apply(ctx context.Context, sub *stripelib.Subscription, invoice *stripelib.Invoice, explicitUserID string) (*billing.Subscription, error)
}

type SubscriptionLookup interface {
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*billing.Subscription, error)
}

// errSkipped marks events that were understood but carry nothing to project.
var errSkipped = errors.New("event skipped")

type Handler struct {
	verifier  *stripeinfra.Verifier
	events    EventClaimer
	provider  SubscriptionFetcher
	projector SubscriptionProjector
	lookup    SubscriptionLookup

	// ackOnError acknowledges deliveries whose processing failed. When false
	// the handler answers 500 and releases the marker so the provider's
	// redelivery is processed again.
	ackOnError bool
	log        *zap.Logger
}

type Config struct {
	Verifier   *stripeinfra.Verifier
	Events     EventClaimer
	Provider   SubscriptionFetcher
	Projector  SubscriptionProjector
	Lookup     SubscriptionLookup
	AckOnError bool
	Logger     *zap.Logger
}

func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		verifier:   cfg.Verifier,
		events:     cfg.Events,
		provider:   cfg.Provider,
		projector:  cfg.Projector,
		lookup:     cfg.Lookup,
		ackOnError: cfg.AckOnError,
		log:        cfg.Logger.Named("stripe_webhook"),
	}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	start := time.Now()
	eventType := "unknown"
	outcome := metrics.OutcomeProcessed
	defer func() {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	// the signature covers these exact bytes, so nothing may parse them first
	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		outcome = metrics.OutcomeRejected
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader(stripeinfra.SignatureHeader))
	if err != nil {
		outcome = metrics.OutcomeRejected
		if errors.Is(err, stripeinfra.ErrMissingSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature"})
			return
		}
		h.log.Warn("signature verification failed", zap.String("remote_ip", c.ClientIP()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	eventType = string(event.Type)
	ctx := c.Request.Context()
	log := h.log.With(zap.String("event_id", event.ID), zap.String("event_type", eventType))

	claimed, err := h.events.Claim(ctx, event.ID, eventType)
	switch {
	case err != nil:
		// a double process is harmless: every write below is an idempotent upsert
		log.Warn("dedup marker insert failed, processing anyway", zap.Error(err))
	case !claimed:
		outcome = metrics.OutcomeDuplicate
		log.Info("duplicate delivery acknowledged")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	err = h.dispatch(ctx, &event, log)
	switch {
	case err == nil:
	case errors.Is(err, errSkipped), errors.Is(err, stripeinfra.ErrNoUserID):
		outcome = metrics.OutcomeIgnored
		log.Info("event not projected", zap.Error(err))
	default:
		outcome = metrics.OutcomeFailed
		log.Error("webhook processing failed", zap.Error(err))
		if !h.ackOnError {
			if claimed {
				if relErr := h.events.Release(ctx, event.ID); relErr != nil {
					log.Error("release dedup marker failed", zap.Error(relErr))
				}
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) dispatch(ctx context.Context, event *stripelib.Event, log *zap.Logger) error {
	if event.Data == nil {
		return errSkipped
	}

	switch event.Type {
	case "checkout.session.completed":
		return h.handleCheckoutSessionCompleted(ctx, event.Data.Raw)

	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"customer.subscription.paused",
		"customer.subscription.resumed":
		return h.handleSubscriptionEvent(ctx, event.Data.Raw)

	case "invoice.paid",
		"invoice.payment_succeeded",
		"invoice.payment_failed":
		return h.handleInvoiceEvent(ctx, event.Data.Raw)

	default:
		log.Debug("unhandled event type")
		return errSkipped
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
