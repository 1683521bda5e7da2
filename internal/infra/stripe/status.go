package stripe

import (
	stripelib "github.com/stripe/stripe-go/v75"

	"tradejournal-billing/internal/domain/billing"
)

// statusFromStripe keeps the provider value as an opaque string; empty
// means the provider omitted it, which we treat as incomplete.
func statusFromStripe(s stripelib.SubscriptionStatus) billing.Status {
	status := billing.NormalizeStatus(string(s))
	if status == "" {
		return billing.StatusIncomplete
	}
	return status
}
