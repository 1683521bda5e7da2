package stripewebhooks

import (
	"context"
	"encoding/json"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v75"
)

// handleInvoiceEvent refreshes the invoice's subscription so period dates and
// status reflect the payment outcome. The event's invoice only feeds the
// projection while it is still the subscription's latest one.
func (h *Handler) handleInvoiceEvent(ctx context.Context, raw json.RawMessage) error {
	var invoice stripelib.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return fmt.Errorf("decode invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return fmt.Errorf("%w: invoice %s is not for a subscription", errSkipped, invoice.ID)
	}

	sub, err := h.provider.GetSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", invoice.Subscription.ID, err)
	}
	return h.project(ctx, sub, currentInvoice(sub, &invoice))
}

// currentInvoice drops an invoice that a newer one has superseded, so a late
// delivery cannot roll back latest_invoice_id.
func currentInvoice(sub *stripelib.Subscription, invoice *stripelib.Invoice) *stripelib.Invoice {
	if sub.LatestInvoice != nil && sub.LatestInvoice.ID != "" && sub.LatestInvoice.ID != invoice.ID {
		return nil
	}
	return invoice
}
