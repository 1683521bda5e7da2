package trades

import (
	"tradejournal-billing/internal/domain/billing"
	"tradejournal-billing/internal/domain/trades"
)

type TradeDTO struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	EntryPrice float64  `json:"entry_price"`
	ExitPrice  *float64 `json:"exit_price"`
	PnL        *float64 `json:"pnl"`
	OpenedAt   *string  `json:"opened_at"`
	ClosedAt   *string  `json:"closed_at"`
	Notes      string   `json:"notes"`
}

func toTradeDTO(t trades.Trade) TradeDTO {
	opened := t.OpenedAt
	return TradeDTO{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		PnL:        t.PnL(),
		OpenedAt:   billing.FormatISO(&opened),
		ClosedAt:   billing.FormatISO(t.ClosedAt),
		Notes:      t.Notes,
	}
}
