package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal-billing/internal/domain/billing"
)

func tp(t time.Time) *time.Time { return &t }

func record(subID, userID string, status billing.Status, updated time.Time) *billing.Subscription {
	return &billing.Subscription{
		UserID:               userID,
		StripeSubscriptionID: subID,
		StripeCustomerID:     "cus_" + userID,
		Status:               status,
		PriceID:              "price_pro",
		Quantity:             1,
		CurrentPeriodEnd:     tp(updated.Add(30 * 24 * time.Hour)),
		UpdatedAt:            updated,
	}
}

func TestSubscriptionRepository_UpsertLastWriteWins(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a := func() *billing.Subscription {
		r := record("sub_1", "user-1", billing.StatusActive, base)
		r.CancelAtPeriodEnd = true
		r.CancelAt = tp(base.Add(48 * time.Hour))
		return r
	}
	b := func() *billing.Subscription {
		r := record("sub_1", "user-1", billing.StatusPastDue, base.Add(time.Hour))
		r.PriceID = "price_basic"
		return r
	}

	orders := map[string][]func() *billing.Subscription{
		"a then b": {a, b},
		"b then a": {b, a},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSubscriptionRepository(db)
			ctx := context.Background()

			var last *billing.Subscription
			for _, build := range order {
				last = build()
				require.NoError(t, repo.Upsert(ctx, last))
			}

			var count int64
			require.NoError(t, db.Model(&billing.Subscription{}).Where("stripe_subscription_id = ?", "sub_1").Count(&count).Error)
			assert.Equal(t, int64(1), count)

			got, err := repo.GetByStripeID(ctx, "sub_1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, last.Status, got.Status)
			assert.Equal(t, last.PriceID, got.PriceID)
			assert.Equal(t, last.CancelAtPeriodEnd, got.CancelAtPeriodEnd)
			if last.CancelAt == nil {
				assert.Nil(t, got.CancelAt)
			} else {
				require.NotNil(t, got.CancelAt)
				assert.True(t, last.CancelAt.Equal(*got.CancelAt))
			}
		})
	}
}

func TestSubscriptionRepository_UpsertKeepsCreatedAt(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := record("sub_keep", "user-1", billing.StatusTrialing, base)
	first.CreatedAt = base
	require.NoError(t, repo.Upsert(ctx, first))

	second := record("sub_keep", "user-1", billing.StatusActive, base.Add(time.Hour))
	second.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetByStripeID(ctx, "sub_keep")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, got.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(base))
	assert.True(t, got.CreatedAt.Equal(base))
	assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, billing.StatusActive, got.Status)
}

func TestSubscriptionRepository_LatestForUser(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := repo.LatestForUser(ctx, "user-none")
	require.NoError(t, err)
	assert.Nil(t, got)

	old := record("sub_old", "user-1", billing.StatusCanceled, base)
	old.EndedAt = tp(base)
	require.NoError(t, repo.Upsert(ctx, old))
	require.NoError(t, repo.Upsert(ctx, record("sub_new", "user-1", billing.StatusActive, base.Add(24*time.Hour))))
	require.NoError(t, repo.Upsert(ctx, record("sub_other", "user-2", billing.StatusActive, base.Add(48*time.Hour))))

	got, err = repo.LatestForUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sub_new", got.StripeSubscriptionID)

	all, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sub_new", all[0].StripeSubscriptionID)
	assert.Equal(t, "sub_old", all[1].StripeSubscriptionID)
}
