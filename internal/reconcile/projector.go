package reconcile

import (
	"context"
	"time"

	stripelib "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/billing"
	stripeinfra "tradejournal-billing/internal/infra/stripe"
)

type SubscriptionWriter interface {
	Upsert(ctx context.Context, sub *billing.Subscription) error
}

type CustomerWriter interface {
	Ensure(ctx context.Context, userID, email string) error
	SetCustomerIDIfNull(ctx context.Context, userID, customerID string) (bool, error)
}

type DecisionInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Projector turns provider subscription objects into local rows. The webhook
// and the billing gateway both write through it; neither is ordered against
// the other and the last upsert wins.
type Projector struct {
	subs      SubscriptionWriter
	customers CustomerWriter
	cache     DecisionInvalidator
	now       func() time.Time
	log       *zap.Logger
}

func NewProjector(subs SubscriptionWriter, customers CustomerWriter, cache DecisionInvalidator, log *zap.Logger) *Projector {
	return &Projector{
		subs:      subs,
		customers: customers,
		cache:     cache,
		now:       time.Now,
		log:       log.Named("projector"),
	}
}

// Apply maps and upserts sub. Mapping failures (including a missing user id)
// are returned unwrapped so callers can match stripe.ErrNoUserID.
func (p *Projector) Apply(ctx context.Context, sub *stripelib.Subscription, invoice *stripelib.Invoice, explicitUserID string) (*billing.Subscription, error) {
	rec, err := stripeinfra.MapSubscription(sub, invoice, explicitUserID, p.now())
	if err != nil {
		return nil, err
	}

	if err := p.subs.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	log := p.log.With(
		zap.String("user_id", rec.UserID),
		zap.String("subscription_id", rec.StripeSubscriptionID),
		zap.String("status", string(rec.Status)),
	)
	log.Info("subscription projected")

	if rec.StripeCustomerID != "" {
		p.writeBackCustomer(ctx, rec, log)
	}
	if p.cache != nil {
		p.cache.Invalidate(ctx, rec.UserID)
	}
	return rec, nil
}

// writeBackCustomer records the customer id on the profile the first time it
// is seen. Failure here does not undo the upsert.
func (p *Projector) writeBackCustomer(ctx context.Context, rec *billing.Subscription, log *zap.Logger) {
	if err := p.customers.Ensure(ctx, rec.UserID, ""); err != nil {
		log.Warn("profile ensure failed", zap.Error(err))
		return
	}
	set, err := p.customers.SetCustomerIDIfNull(ctx, rec.UserID, rec.StripeCustomerID)
	if err != nil {
		log.Warn("customer id write-back failed", zap.Error(err))
		return
	}
	if set {
		log.Info("customer id recorded on profile", zap.String("customer_id", rec.StripeCustomerID))
	}
}
