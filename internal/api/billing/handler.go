package billing

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/access"
)

type DecisionSource interface {
	Fresh(ctx context.Context, userID string) (access.Decision, error)
}

// Handler exposes the gateway and the subscription status over HTTP. The
// auth middleware has already put user_id and email on the context.
type Handler struct {
	gateway   *Gateway
	decisions DecisionSource
	log       *zap.Logger
}

func NewHandler(gateway *Gateway, decisions DecisionSource, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{gateway: gateway, decisions: decisions, log: log.Named("billing_api")}
}

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		writeError(c, Unauthorized())
		return "", false
	}
	return userID, true
}
