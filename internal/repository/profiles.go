package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal-billing/internal/domain/users"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Ensure creates the profile row if it does not exist. An existing row is
// left alone, except that a blank email is filled in.
func (r *ProfileRepository) Ensure(ctx context.Context, userID, email string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&users.Profile{ID: userID, Email: email}).Error
	if err != nil {
		return fmt.Errorf("ensure profile %s: %w", userID, err)
	}
	if email == "" {
		return nil
	}
	err = r.db.WithContext(ctx).Model(&users.Profile{}).
		Where("id = ? AND (email IS NULL OR email = '')", userID).
		Update("email", email).Error
	if err != nil {
		return fmt.Errorf("fill profile email %s: %w", userID, err)
	}
	return nil
}

// Get returns nil when the profile does not exist.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*users.Profile, error) {
	var p users.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &p, nil
}

// SetCustomerIDIfNull writes customerID only if the profile has none yet.
// It reports whether this call set it.
func (r *ProfileRepository) SetCustomerIDIfNull(ctx context.Context, userID, customerID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&users.Profile{}).
		Where("id = ? AND stripe_customer_id IS NULL", userID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return false, fmt.Errorf("set customer id for %s: %w", userID, res.Error)
	}
	return res.RowsAffected == 1, nil
}
