package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal-billing/internal/domain/billing"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert inserts sub or, if a row with the same stripe_subscription_id
// exists, overwrites every mapped column except id and created_at.
// The last call wins. On return sub carries the stored id and created_at.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *billing.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns(billing.UpsertColumns),
		}).Create(sub).Error
		if err != nil {
			return err
		}

		var stored billing.Subscription
		if err := tx.Select("id", "created_at").
			Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).
			Take(&stored).Error; err != nil {
			return err
		}
		sub.ID, sub.CreatedAt = stored.ID, stored.CreatedAt
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.StripeSubscriptionID, err)
	}
	return nil
}

// LatestForUser returns the most recently updated row, or nil when the user
// never subscribed.
func (r *SubscriptionRepository) LatestForUser(ctx context.Context, userID string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(1).
		Take(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest subscription for user %s: %w", userID, err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListForUser(ctx context.Context, userID string) ([]billing.Subscription, error) {
	var subs []billing.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for user %s: %w", userID, err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Take(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription %s: %w", stripeSubscriptionID, err)
	}
	return &sub, nil
}

// CountByStatus returns how many rows sit in each status. Statuses with no
// rows are absent from the map.
func (r *SubscriptionRepository) CountByStatus(ctx context.Context) (map[billing.Status]int64, error) {
	var rows []struct {
		Status billing.Status
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&billing.Subscription{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count subscriptions by status: %w", err)
	}

	out := make(map[billing.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
