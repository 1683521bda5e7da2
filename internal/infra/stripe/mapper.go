package stripe

import (
	"errors"
	"strings"
	"time"

	stripelib "github.com/stripe/stripe-go/v75"

	"tradejournal-billing/internal/domain/billing"
)

// ErrNoUserID means neither the caller nor the subscription metadata named
// an owner. Retrying cannot fix it.
var ErrNoUserID = errors.New("subscription has no user id")

// Metadata keys checked, in order, for the owning user id.
var userIDMetadataKeys = []string{"userId", "user_id"}

// MapSubscription converts a provider subscription (and optionally its latest
// invoice) into the local record. explicitUserID wins over metadata.
func MapSubscription(sub *stripelib.Subscription, invoice *stripelib.Invoice, explicitUserID string, now time.Time) (*billing.Subscription, error) {
	if sub == nil || sub.ID == "" {
		return nil, errors.New("subscription missing id")
	}

	userID := resolveUserID(sub, explicitUserID)
	if userID == "" {
		return nil, ErrNoUserID
	}

	if invoice == nil && isExpandedInvoice(sub.LatestInvoice) {
		invoice = sub.LatestInvoice
	}

	rec := &billing.Subscription{
		UserID:               userID,
		StripeSubscriptionID: sub.ID,
		Status:               statusFromStripe(sub.Status),
		CurrentPeriodStart:   epochToTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     epochToTime(sub.CurrentPeriodEnd),
		TrialStart:           epochToTime(sub.TrialStart),
		TrialEnd:             epochToTime(sub.TrialEnd),
		CancelAt:             epochToTime(sub.CancelAt),
		CanceledAt:           epochToTime(sub.CanceledAt),
		EndedAt:              epochToTime(sub.EndedAt),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		Currency:             string(sub.Currency),
		CollectionMethod:     string(sub.CollectionMethod),
		UpdatedAt:            now.UTC(),
	}

	if sub.Customer != nil {
		rec.StripeCustomerID = sub.Customer.ID
	}

	if item := firstItem(sub); item != nil {
		rec.Quantity = item.Quantity
		if item.Price != nil {
			rec.PriceID = item.Price.ID
			if item.Price.Product != nil {
				rec.ProductID = item.Price.Product.ID
			}
		}
	}

	if sub.LatestInvoice != nil {
		rec.LatestInvoiceID = sub.LatestInvoice.ID
	}
	if invoice != nil {
		if invoice.ID != "" {
			rec.LatestInvoiceID = invoice.ID
		}
		if invoice.Currency != "" {
			rec.Currency = string(invoice.Currency)
		}
		if invoice.CollectionMethod != "" {
			rec.CollectionMethod = string(invoice.CollectionMethod)
		}
		if rec.StripeCustomerID == "" && invoice.Customer != nil {
			rec.StripeCustomerID = invoice.Customer.ID
		}
	}

	return rec, nil
}

func resolveUserID(sub *stripelib.Subscription, explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	for _, key := range userIDMetadataKeys {
		if id := strings.TrimSpace(sub.Metadata[key]); id != "" {
			return id
		}
	}
	return ""
}

func firstItem(sub *stripelib.Subscription) *stripelib.SubscriptionItem {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

// An unexpanded latest_invoice decodes to an Invoice carrying only its id.
func isExpandedInvoice(inv *stripelib.Invoice) bool {
	return inv != nil && inv.Currency != ""
}

// epochToTime returns nil for absent or non-positive epochs so the record
// never holds 1970-01-01.
func epochToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
