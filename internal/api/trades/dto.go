package trades

import "time"

// ---------- requests

type CreateTradeRequest struct {
	Symbol     string     `json:"symbol" binding:"required,max=32"`
	Side       string     `json:"side" binding:"required,oneof=long short"`
	Quantity   float64    `json:"quantity" binding:"required,gt=0"`
	EntryPrice float64    `json:"entry_price" binding:"required,gt=0"`
	ExitPrice  *float64   `json:"exit_price" binding:"omitempty,gt=0"`
	OpenedAt   *time.Time `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at"`
	Notes      string     `json:"notes" binding:"max=4000"`
}

type ListQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
