package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusTrialing          Status = "trialing"
	StatusActive            Status = "active"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

// NormalizeStatus trims and lowercases a provider status. Unknown values are
// kept as-is; only the known subset drives access logic.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Entitling reports whether the status grants access on its own.
func (s Status) Entitling() bool {
	return s == StatusActive || s == StatusTrialing
}

// Subscription is the local projection of one provider subscription.
// A user may own several rows over time; stripe_subscription_id is unique.
type Subscription struct {
	ID                   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string `gorm:"column:user_id;type:varchar(64);not null;index:idx_subscriptions_user_updated,priority:1" json:"user_id"`
	StripeSubscriptionID string `gorm:"column:stripe_subscription_id;type:varchar(255);not null;uniqueIndex:idx_subscriptions_stripe_subscription_id" json:"stripe_subscription_id"`
	StripeCustomerID     string `gorm:"column:stripe_customer_id;type:varchar(255);index:idx_subscriptions_stripe_customer_id" json:"stripe_customer_id"`
	Status               Status `gorm:"column:status;type:varchar(32);not null" json:"status"`

	PriceID   string `gorm:"column:price_id" json:"price_id"`
	ProductID string `gorm:"column:product_id" json:"product_id"`
	Quantity  int64  `gorm:"column:quantity" json:"quantity"`

	CurrentPeriodStart *time.Time `gorm:"column:current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end" json:"current_period_end"`
	TrialStart         *time.Time `gorm:"column:trial_start" json:"trial_start"`
	TrialEnd           *time.Time `gorm:"column:trial_end" json:"trial_end"`
	CancelAt           *time.Time `gorm:"column:cancel_at" json:"cancel_at"`
	CanceledAt         *time.Time `gorm:"column:canceled_at" json:"canceled_at"`
	EndedAt            *time.Time `gorm:"column:ended_at" json:"ended_at"`
	CancelAtPeriodEnd  bool       `gorm:"column:cancel_at_period_end;not null" json:"cancel_at_period_end"`

	Currency         string `gorm:"column:currency" json:"currency"`
	LatestInvoiceID  string `gorm:"column:latest_invoice_id" json:"latest_invoice_id"`
	CollectionMethod string `gorm:"column:collection_method" json:"collection_method"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index:idx_subscriptions_user_updated,priority:2" json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// UpsertColumns are overwritten when a row with the same
// stripe_subscription_id already exists. created_at and id are kept.
var UpsertColumns = []string{
	"user_id",
	"stripe_customer_id",
	"status",
	"price_id",
	"product_id",
	"quantity",
	"current_period_start",
	"current_period_end",
	"trial_start",
	"trial_end",
	"cancel_at",
	"canceled_at",
	"ended_at",
	"cancel_at_period_end",
	"currency",
	"latest_invoice_id",
	"collection_method",
	"updated_at",
}
