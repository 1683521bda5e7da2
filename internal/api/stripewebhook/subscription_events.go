package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v75"

	stripeinfra "tradejournal-billing/internal/infra/stripe"
)

// handleSubscriptionEvent projects the subscription object carried by the
// event. The payload is authoritative for this event; no re-fetch.
func (h *Handler) handleSubscriptionEvent(ctx context.Context, raw json.RawMessage) error {
	var sub stripelib.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	if sub.ID == "" {
		return fmt.Errorf("%w: subscription without id", errSkipped)
	}
	return h.project(ctx, &sub, nil)
}

// project applies sub. Subscriptions created outside checkout may lack the
// userId metadata; an existing row for the same subscription names the owner.
func (h *Handler) project(ctx context.Context, sub *stripelib.Subscription, invoice *stripelib.Invoice) error {
	_, err := h.projector.Apply(ctx, sub, invoice, "")
	if !errors.Is(err, stripeinfra.ErrNoUserID) || h.lookup == nil {
		return err
	}

	existing, lookupErr := h.lookup.GetByStripeID(ctx, sub.ID)
	if lookupErr != nil {
		return lookupErr
	}
	if existing == nil {
		return err
	}
	_, err = h.projector.Apply(ctx, sub, invoice, existing.UserID)
	return err
}
