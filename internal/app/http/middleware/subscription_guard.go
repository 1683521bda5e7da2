package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/infra/identity"
)

const LoginPath = "/login"

type DecisionSource interface {
	Cached(ctx context.Context, userID string) (access.Decision, error)
}

// RequireFullAccess gates API routes that need a live subscription. It runs
// after AuthMiddleware.
func RequireFullAccess(decisions DecisionSource, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		d, err := decisions.Cached(c.Request.Context(), userID)
		if err != nil {
			log.Error("access decision failed", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription"})
			return
		}

		switch d.Access {
		case access.LevelFull:
			c.Next()
		case access.LevelLimited:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "subscription_inactive",
				"route": d.Route,
			})
		default:
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "subscription_required",
				"route": d.Route,
			})
		}
	}
}

// PageGuard is the request-time check for page routes. It only looks at the
// session cookie and the cached decision; the page itself re-checks against
// the status endpoint. A decision lookup failure lets the request through.
func PageGuard(cookieName string, sessions identity.SessionAccessor, decisions DecisionSource, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !access.IsProtected(path) {
			c.Next()
			return
		}

		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			redirect(c, LoginPath+"?next="+url.QueryEscape(path))
			return
		}
		s, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			redirect(c, LoginPath+"?next="+url.QueryEscape(path))
			return
		}

		d, err := decisions.Cached(c.Request.Context(), s.UserID)
		if err != nil {
			log.Warn("page guard decision unavailable", zap.String("user_id", s.UserID), zap.Error(err))
			c.Next()
			return
		}

		out := access.Resolve(path, d)
		if !out.Allow {
			redirect(c, out.Redirect)
			return
		}
		c.Set("user_id", s.UserID)
		c.Set("access_decision", d)
		c.Next()
	}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
