package billing

import (
	"context"
	"strings"

	stripelib "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	domain "tradejournal-billing/internal/domain/billing"
	"tradejournal-billing/internal/domain/users"
	"tradejournal-billing/internal/infra/metrics"
	stripeinfra "tradejournal-billing/internal/infra/stripe"
)

type ProfileStore interface {
	Ensure(ctx context.Context, userID, email string) error
	Get(ctx context.Context, userID string) (*users.Profile, error)
	SetCustomerIDIfNull(ctx context.Context, userID, customerID string) (bool, error)
}

type SubscriptionReader interface {
	LatestForUser(ctx context.Context, userID string) (*domain.Subscription, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Subscription, error)
}

type Projector interface {
	Apply(ctx context.Context, sub *stripelib.Subscription, invoice *stripelib.Invoice, explicitUserID string) (*domain.Subscription, error)
}

// Gateway runs user-initiated billing actions. The provider call is the
// commit point; the local projection that follows is best effort and the
// webhook re-applies the same state later.
type Gateway struct {
	provider  stripeinfra.Provider
	profiles  ProfileStore
	subs      SubscriptionReader
	projector Projector
	priceID   string
	appURL    string
	log       *zap.Logger
}

type GatewayConfig struct {
	Provider  stripeinfra.Provider
	Profiles  ProfileStore
	Subs      SubscriptionReader
	Projector Projector
	PriceID   string
	AppURL    string
	Logger    *zap.Logger
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gateway{
		provider:  cfg.Provider,
		profiles:  cfg.Profiles,
		subs:      cfg.Subs,
		projector: cfg.Projector,
		priceID:   cfg.PriceID,
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		log:       cfg.Logger.Named("billing_gateway"),
	}
}

// CreateCheckout returns the hosted checkout URL for the configured price.
func (g *Gateway) CreateCheckout(ctx context.Context, userID, email string) (url string, err error) {
	defer func() { recordAction("checkout", err) }()

	customerID, err := g.ensureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	session, err := g.provider.CreateCheckoutSession(ctx, stripeinfra.CheckoutRequest{
		UserID:     userID,
		CustomerID: customerID,
		PriceID:    g.priceID,
		SuccessURL: g.appURL + "/dashboard?checkout=success",
		CancelURL:  g.appURL + "/subscribe?checkout=canceled",
	})
	if err != nil {
		g.log.Error("create checkout session failed", zap.String("user_id", userID), zap.Error(err))
		return "", Upstream("Failed to create checkout session", err)
	}
	return session.URL, nil
}

// ensureCustomer returns the user's provider customer id, creating one on
// first use. Two concurrent first checkouts may both create a customer; only
// the first conditional write sticks and the loser adopts it.
func (g *Gateway) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	if err := g.profiles.Ensure(ctx, userID, email); err != nil {
		return "", Internal("Failed to load profile", err)
	}
	profile, err := g.profiles.Get(ctx, userID)
	if err != nil {
		return "", Internal("Failed to load profile", err)
	}
	if profile != nil && profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}
	if email == "" && profile != nil {
		email = profile.Email
	}

	cus, err := g.provider.CreateCustomer(ctx, userID, email)
	if err != nil {
		g.log.Error("create customer failed", zap.String("user_id", userID), zap.Error(err))
		return "", Upstream("Failed to create billing customer", err)
	}

	set, err := g.profiles.SetCustomerIDIfNull(ctx, userID, cus.ID)
	if err != nil {
		return "", Internal("Failed to store billing customer", err)
	}
	if set {
		g.log.Info("billing customer created", zap.String("user_id", userID), zap.String("customer_id", cus.ID))
		return cus.ID, nil
	}

	profile, err = g.profiles.Get(ctx, userID)
	if err != nil {
		return "", Internal("Failed to load profile", err)
	}
	if profile == nil || profile.StripeCustomerID == nil {
		return "", Internal("Failed to store billing customer", nil)
	}
	g.log.Info("concurrent customer creation, using stored id",
		zap.String("user_id", userID),
		zap.String("customer_id", *profile.StripeCustomerID),
		zap.String("discarded_customer_id", cus.ID))
	return *profile.StripeCustomerID, nil
}

// CreatePortalSession returns a customer-portal URL. Users who never started
// checkout have no customer and get a 404.
func (g *Gateway) CreatePortalSession(ctx context.Context, userID string) (url string, err error) {
	defer func() { recordAction("portal", err) }()

	profile, err := g.profiles.Get(ctx, userID)
	if err != nil {
		return "", Internal("Failed to load profile", err)
	}
	if profile == nil || profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return "", NotFound("no_customer", "No billing customer yet (subscribe first)", ErrNoCustomer)
	}

	portal, err := g.provider.CreatePortalSession(ctx, *profile.StripeCustomerID, g.appURL+"/settings/billing")
	if err != nil {
		g.log.Error("create portal session failed", zap.String("user_id", userID), zap.Error(err))
		return "", Upstream("Could not create billing portal session", err)
	}
	return portal.URL, nil
}

// CancelAtPeriodEnd schedules the latest subscription to end with its
// current period and projects the provider's answer immediately.
func (g *Gateway) CancelAtPeriodEnd(ctx context.Context, userID string) (rec *domain.Subscription, err error) {
	defer func() { recordAction("cancel", err) }()

	latest, err := g.subs.LatestForUser(ctx, userID)
	if err != nil {
		return nil, Internal("Failed to load subscription", err)
	}
	if latest == nil || !latest.Status.Entitling() {
		return nil, Precondition("no_active_subscription", "No active subscription to cancel", ErrNoActiveSubscription)
	}

	log := g.log.With(zap.String("user_id", userID), zap.String("subscription_id", latest.StripeSubscriptionID))

	sub, err := g.provider.SetCancelAtPeriodEnd(ctx, latest.StripeSubscriptionID)
	if err != nil {
		log.Error("cancel at period end failed", zap.Error(err))
		return nil, Upstream("Failed to cancel subscription", err)
	}

	rec, err = g.projector.Apply(ctx, sub, nil, userID)
	if err != nil {
		// the cancellation happened; the webhook will project it
		log.Warn("local projection after cancel failed", zap.Error(err))
		return latest, nil
	}
	log.Info("subscription set to cancel at period end")
	return rec, nil
}

func (g *Gateway) History(ctx context.Context, userID string) ([]domain.Subscription, error) {
	rows, err := g.subs.ListForUser(ctx, userID)
	if err != nil {
		return nil, Internal("Failed to load billing history", err)
	}
	return rows, nil
}

func recordAction(action string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.GatewayActionsTotal.WithLabelValues(action, outcome).Inc()
}
