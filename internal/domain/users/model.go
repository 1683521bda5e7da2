package users

import "time"

// Profile is the local user record. ID is the identity provider's subject.
type Profile struct {
	ID               string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email            string  `gorm:"column:email" json:"email"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_profiles_stripe_customer_id" json:"stripe_customer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
