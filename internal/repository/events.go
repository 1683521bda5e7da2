package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tradejournal-billing/internal/domain/billing"
)

// EventRepository persists processed webhook event markers.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Claim inserts the marker for eventID. It returns false with a nil error
// when the id was already claimed by an earlier or concurrent delivery.
// Any other insert failure is returned as is with claimed=false; the caller
// decides whether to process anyway.
func (r *EventRepository) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	err := r.db.WithContext(ctx).Create(&billing.ProcessedEvent{
		EventID:   eventID,
		EventType: eventType,
	}).Error
	if err == nil {
		return true, nil
	}
	if IsUniqueViolation(err) {
		return false, nil
	}
	return false, fmt.Errorf("claim event %s: %w", eventID, err)
}

// Release removes a marker so a redelivery is processed again.
func (r *EventRepository) Release(ctx context.Context, eventID string) error {
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&billing.ProcessedEvent{}).Error; err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}

func (r *EventRepository) Recent(ctx context.Context, limit int) ([]billing.ProcessedEvent, error) {
	var events []billing.ProcessedEvent
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list processed events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&billing.ProcessedEvent{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count processed events: %w", err)
	}
	return n, nil
}
