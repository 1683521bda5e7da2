package users

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/domain/billing"
	domain "tradejournal-billing/internal/domain/users"
)

type ProfileStore interface {
	Ensure(ctx context.Context, userID, email string) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type SubscriptionReader interface {
	LatestForUser(ctx context.Context, userID string) (*billing.Subscription, error)
}

type Handler struct {
	profiles ProfileStore
	subs     SubscriptionReader
	now      func() time.Time
	log      *zap.Logger
}

func NewHandler(profiles ProfileStore, subs SubscriptionReader, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{profiles: profiles, subs: subs, now: time.Now, log: log.Named("users_api")}
}

// GetCurrentUser returns the caller's profile, latest subscription and the
// access decision derived from it. The profile row is created on first call.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx := c.Request.Context()
	email := c.GetString("email")

	if err := h.profiles.Ensure(ctx, userID, email); err != nil {
		h.log.Error("ensure profile failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	latest, err := h.subs.LatestForUser(ctx, userID)
	if err != nil {
		h.log.Error("load subscription failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	if profile != nil && profile.Email != "" {
		email = profile.Email
	}
	d := access.Decide(latest, h.now())

	c.JSON(http.StatusOK, MeResponse{
		User: UserDTO{
			ID:    userID,
			Email: email,
			Role:  c.GetString("role"),
		},
		Billing: BuildBillingDTO(profile, latest),
		Access:  BuildAccessDTO(d),
	})
}
