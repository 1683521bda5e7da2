package users

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	HasCustomer  bool             `json:"has_customer"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type SubscriptionDTO struct {
	Status            string  `json:"status"`
	PriceID           string  `json:"price_id"`
	CurrentPeriodEnd  *string `json:"current_period_end"`
	TrialEnd          *string `json:"trial_end"`
	CancelAtPeriodEnd bool    `json:"cancel_at_period_end"`
	CancelAt          *string `json:"cancel_at"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	Level        string   `json:"level"`
	Route        string   `json:"route"`
	Reason       string   `json:"reason"`
	IsActive     bool     `json:"is_active"`
	HasHistory   bool     `json:"has_history"`
	Capabilities []string `json:"capabilities"`
}
