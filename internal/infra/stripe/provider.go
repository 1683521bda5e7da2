package stripe

import (
	"context"
	"time"

	stripelib "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Provider is the subset of the billing provider the service calls.
type Provider interface {
	GetSubscription(ctx context.Context, id string) (*stripelib.Subscription, error)
	CreateCustomer(ctx context.Context, userID, email string) (*stripelib.Customer, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*stripelib.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripelib.BillingPortalSession, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*stripelib.Subscription, error)
}

type CheckoutRequest struct {
	UserID     string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Client implements Provider over a per-instance stripe API client, so the
// package-level stripe.Key is never touched.
type Client struct {
	api     *client.API
	timeout time.Duration
}

func NewClient(secretKey string, timeout time.Duration) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, timeout: timeout}
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GetSubscription fetches a subscription with latest_invoice expanded.
func (c *Client) GetSubscription(ctx context.Context, id string) (*stripelib.Subscription, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("latest_invoice")
	return c.api.Subscriptions.Get(id, params)
}

// CreateCustomer uses the user id as idempotency key so concurrent first
// checkouts resolve to one provider customer.
func (c *Client) CreateCustomer(ctx context.Context, userID, email string) (*stripelib.Customer, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.CustomerParams{}
	if email != "" {
		params.Email = stripelib.String(email)
	}
	params.AddMetadata("userId", userID)
	params.Context = ctx
	params.IdempotencyKey = stripelib.String("customer-create-" + userID)
	return c.api.Customers.New(params)
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*stripelib.CheckoutSession, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.CheckoutSessionParams{
		SuccessURL:        stripelib.String(req.SuccessURL),
		CancelURL:         stripelib.String(req.CancelURL),
		Mode:              stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		Customer:          stripelib.String(req.CustomerID),
		ClientReferenceID: stripelib.String(req.UserID),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{Price: stripelib.String(req.PriceID), Quantity: stripelib.Int64(1)},
		},
		SubscriptionData: &stripelib.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": req.UserID},
		},
	}
	params.Context = ctx
	return c.api.CheckoutSessions.New(params)
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripelib.BillingPortalSession, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.BillingPortalSessionParams{
		Customer:  stripelib.String(customerID),
		ReturnURL: stripelib.String(returnURL),
	}
	params.Context = ctx
	return c.api.BillingPortalSessions.New(params)
}

func (c *Client) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*stripelib.Subscription, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.SubscriptionParams{
		CancelAtPeriodEnd: stripelib.Bool(true),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice")
	return c.api.Subscriptions.Update(subscriptionID, params)
}

// GetPrice fetches a price with its product expanded.
func (c *Client) GetPrice(ctx context.Context, id string) (*stripelib.Price, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := &stripelib.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")
	return c.api.Prices.Get(id, params)
}
