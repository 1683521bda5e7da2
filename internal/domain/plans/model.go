package plans

import (
	stripelib "github.com/stripe/stripe-go/v75"
)

// Plan is the public description of the single subscription price shown on
// the subscribe page. UnitAmount is in major currency units and Interval is
// month or year.
type Plan struct {
	PriceID    string  `json:"price_id"`
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Currency   string  `json:"currency"`
	UnitAmount float64 `json:"unit_amount"`
	Interval   string  `json:"interval"`
	TrialDays  int64   `json:"trial_days,omitempty"`
}

// FromStripePrice returns false for prices that cannot be sold as a
// subscription. An unexpanded product is not checked.
func FromStripePrice(p *stripelib.Price) (Plan, bool) {
	if p == nil || !p.Active || p.Recurring == nil {
		return Plan{}, false
	}
	if p.Product != nil && p.Product.Name != "" && !p.Product.Active {
		return Plan{}, false
	}

	out := Plan{
		PriceID:    p.ID,
		Currency:   string(p.Currency),
		UnitAmount: float64(p.UnitAmount) / 100.0,
		Interval:   string(p.Recurring.Interval),
		TrialDays:  p.Recurring.TrialPeriodDays,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
		out.Name = p.Product.Name
	}
	return out, true
}
