package users

import (
	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/domain/billing"
	domain "tradejournal-billing/internal/domain/users"
)

func BuildBillingDTO(p *domain.Profile, latest *billing.Subscription) BillingDTO {
	out := BillingDTO{
		HasCustomer: p != nil && p.StripeCustomerID != nil && *p.StripeCustomerID != "",
	}
	if latest != nil {
		out.Subscription = &SubscriptionDTO{
			Status:            string(latest.Status),
			PriceID:           latest.PriceID,
			CurrentPeriodEnd:  billing.FormatISO(latest.CurrentPeriodEnd),
			TrialEnd:          billing.FormatISO(latest.TrialEnd),
			CancelAtPeriodEnd: latest.CancelAtPeriodEnd,
			CancelAt:          billing.FormatISO(latest.CancelAt),
		}
	}
	return out
}

func BuildAccessDTO(d access.Decision) AccessDTO {
	return AccessDTO{
		Level:        string(d.Access),
		Route:        string(d.Route),
		Reason:       string(d.Reason),
		IsActive:     d.IsActive,
		HasHistory:   d.HasHistory,
		Capabilities: access.CapabilitiesFor(d.Access),
	}
}
