package stripewebhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	stripelib "github.com/stripe/stripe-go/v75"
)

// handleCheckoutSessionCompleted fetches the new subscription and projects it
// for the user named by client_reference_id.
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, raw json.RawMessage) error {
	var session stripelib.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	if session.Mode != "" && session.Mode != stripelib.CheckoutSessionModeSubscription {
		return errSkipped
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return fmt.Errorf("%w: checkout session %s has no subscription", errSkipped, session.ID)
	}

	sub, err := h.provider.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", session.Subscription.ID, err)
	}

	_, err = h.projector.Apply(ctx, sub, nil, strings.TrimSpace(session.ClientReferenceID))
	return err
}
