package trades

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

type Trade struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Symbol     string     `gorm:"type:varchar(32);not null" json:"symbol"`
	Side       Side       `gorm:"type:varchar(8);not null" json:"side"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	OpenedAt   time.Time  `gorm:"index" json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PnL is nil while the trade is open.
func (t Trade) PnL() *float64 {
	if t.ExitPrice == nil {
		return nil
	}
	diff := *t.ExitPrice - t.EntryPrice
	if t.Side == SideShort {
		diff = -diff
	}
	v := diff * t.Quantity
	return &v
}
