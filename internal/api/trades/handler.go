package trades

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/trades"
)

const defaultListLimit = 100

type Store interface {
	List(ctx context.Context, userID string, limit, offset int) ([]trades.Trade, error)
	Create(ctx context.Context, t *trades.Trade) error
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type Handler struct {
	store Store
	log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, log: log.Named("trades_api")}
}

func mustUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

func (h *Handler) ListTrades(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid paging parameters"})
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	rows, err := h.store.List(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		h.log.Error("list trades failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trades"})
		return
	}

	out := make([]TradeDTO, 0, len(rows))
	for _, t := range rows {
		out = append(out, toTradeDTO(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateTrade(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trade", "details": err.Error()})
		return
	}
	if req.ClosedAt != nil && req.ExitPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "closed trades need an exit_price"})
		return
	}

	opened := time.Now().UTC()
	if req.OpenedAt != nil {
		opened = req.OpenedAt.UTC()
	}

	t := trades.Trade{
		UserID:     userID,
		Symbol:     strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:       trades.Side(req.Side),
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		OpenedAt:   opened,
		ClosedAt:   req.ClosedAt,
		Notes:      req.Notes,
	}
	if err := h.store.Create(c.Request.Context(), &t); err != nil {
		h.log.Error("create trade failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save trade"})
		return
	}

	c.JSON(http.StatusCreated, toTradeDTO(t))
}

func (h *Handler) DeleteTrade(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trade"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
