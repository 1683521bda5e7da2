package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/infra/identity"
)

type fakeSessions map[string]identity.Session

func (f fakeSessions) Verify(_ context.Context, token string) (identity.Session, error) {
	s, ok := f[token]
	if !ok {
		return identity.Session{}, identity.ErrInvalidToken
	}
	return s, nil
}

type fakeDecisions struct {
	byUser map[string]access.Decision
	err    error
}

func (f fakeDecisions) Cached(_ context.Context, userID string) (access.Decision, error) {
	if f.err != nil {
		return access.Decision{}, f.err
	}
	if d, ok := f.byUser[userID]; ok {
		return d, nil
	}
	return access.Decide(nil, time.Now()), nil
}

var (
	sessions = fakeSessions{
		"tok-full":    {UserID: "full", Email: "full@example.com", Role: "user"},
		"tok-limited": {UserID: "limited", Role: "user"},
		"tok-none":    {UserID: "none", Role: "user"},
		"tok-admin":   {UserID: "admin", Role: "admin"},
	}
	decisions = fakeDecisions{byUser: map[string]access.Decision{
		"full":    {HasHistory: true, IsActive: true, Access: access.LevelFull, Route: access.RouteDashboard, Reason: access.ReasonActive},
		"limited": {HasHistory: true, Access: access.LevelLimited, Route: access.RouteBilling, Reason: access.ReasonInactive},
		"admin":   {HasHistory: true, IsActive: true, Access: access.LevelFull, Route: access.RouteDashboard, Reason: access.ReasonActive},
	}}
)

func init() { gin.SetMode(gin.TestMode) }

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/api/x", AuthMiddleware(sessions, zaptest.NewLogger(t)), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+"|"+c.GetString("email"))
	})
	r.GET("/admin/x", AuthMiddleware(sessions, zaptest.NewLogger(t)), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func(path, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call("/api/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header missing")

	assert.Equal(t, http.StatusUnauthorized, call("/api/x", "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, call("/api/x", "tok-full").Code)

	w = call("/api/x", "Bearer tok-full")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "full|full@example.com", w.Body.String())

	assert.Equal(t, http.StatusForbidden, call("/admin/x", "Bearer tok-full").Code)
	assert.Equal(t, http.StatusNoContent, call("/admin/x", "Bearer tok-admin").Code)
}

func TestRequireFullAccess(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"tok-full", http.StatusOK},
		{"tok-limited", http.StatusForbidden},
		{"tok-none", http.StatusPaymentRequired},
	}

	r := gin.New()
	log := zaptest.NewLogger(t)
	r.GET("/api/trades", AuthMiddleware(sessions, log), RequireFullAccess(decisions, log), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPageGuard(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		cookie   string
		wantCode int
		wantLoc  string
	}{
		{"public page", "/pricing", "", http.StatusOK, ""},
		{"no cookie", "/dashboard", "", http.StatusFound, "/login?next=%2Fdashboard"},
		{"bad cookie", "/dashboard", "garbage", http.StatusFound, "/login?next=%2Fdashboard"},
		{"never subscribed", "/trades", "tok-none", http.StatusFound, "/subscribe"},
		{"limited on dashboard", "/dashboard", "tok-limited", http.StatusFound, "/settings/billing"},
		{"limited on billing", "/settings/billing", "tok-limited", http.StatusOK, ""},
		{"limited on other settings", "/settings/profile", "tok-limited", http.StatusFound, "/settings/billing"},
		{"full", "/trades", "tok-full", http.StatusOK, ""},
	}

	r := gin.New()
	r.Use(PageGuard("sb-access-token", sessions, decisions, zaptest.NewLogger(t)))
	for _, p := range []string{"/pricing", "/dashboard", "/trades", "/settings/billing", "/settings/profile"} {
		r.GET(p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}
}

func TestPageGuard_DecisionFailureLetsThrough(t *testing.T) {
	r := gin.New()
	r.Use(PageGuard("sb-access-token", sessions, fakeDecisions{err: errors.New("redis down")}, zaptest.NewLogger(t)))
	r.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "tok-none"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeAndCleanInput(t *testing.T) {
	r := gin.New()
	r.POST("/x", SanitizeAndCleanInputMiddleware(), func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(body)))
		return w
	}

	w := post(`{"notes":"<script>x</script>hi","nested":{"tags":["<b>a</b>"]},"qty":1.50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notes":"hi","nested":{"tags":["a"]},"qty":1.50}`, w.Body.String())

	w = post(`{"notes":"P&L > 0 <i>net</i>","email":"o'brien@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notes":"P&L > 0 net","email":"o'brien@x.com"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, post("").Code)
	assert.Equal(t, http.StatusBadRequest, post("{nope").Code)
}
