package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal-billing/internal/infra/identity"
)

// AuthMiddleware verifies the bearer token and puts user_id, email and role
// on the context.
func AuthMiddleware(sessions identity.SessionAccessor, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := identity.FromRequest(c.Request, sessions)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, identity.ErrNoToken) {
				msg = "Authorization header missing"
			} else {
				log.Debug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set("user_id", s.UserID)
		c.Set("email", s.Email)
		c.Set("role", s.Role)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			c.Abort()
			return
		}

		if value != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
