package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tradejournal-billing/internal/domain/trades"
)

type TradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) List(ctx context.Context, userID string, limit, offset int) ([]trades.Trade, error) {
	var out []trades.Trade
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("opened_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return out, nil
}

func (r *TradeRepository) Create(ctx context.Context, t *trades.Trade) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create trade: %w", err)
	}
	return nil
}

// Delete removes a trade owned by userID. It reports whether a row matched.
func (r *TradeRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&trades.Trade{})
	if res.Error != nil {
		return false, fmt.Errorf("delete trade %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
