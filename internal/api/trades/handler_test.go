package trades

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tradejournal-billing/internal/repository"
	"tradejournal-billing/internal/testutil"
)

func newRouter(t *testing.T, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(repository.NewTradeRepository(testutil.NewDB(t)), zaptest.NewLogger(t))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.GET("/api/trades", h.ListTrades)
	r.POST("/api/trades", h.CreateTrade)
	r.DELETE("/api/trades/:id", h.DeleteTrade)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTradeHandlers(t *testing.T) {
	r := newRouter(t, "user-1")

	w := send(r, http.MethodPost, "/api/trades", `{"symbol":"aapl","side":"sideways","quantity":1,"entry_price":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPost, "/api/trades", `{"symbol":" aapl ","side":"short","quantity":2,"entry_price":10,"exit_price":7}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created TradeDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "AAPL", created.Symbol)
	require.NotNil(t, created.PnL)
	assert.InDelta(t, 6.0, *created.PnL, 1e-9)

	w = send(r, http.MethodGet, "/api/trades?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []TradeDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	assert.Equal(t, http.StatusOK, send(r, http.MethodDelete, "/api/trades/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodDelete, "/api/trades/"+created.ID, "").Code)
}

func TestTradeHandlers_Unauthorized(t *testing.T) {
	r := newRouter(t, "")
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/api/trades", "").Code)
}
