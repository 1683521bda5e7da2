package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	adminapi "tradejournal-billing/internal/api/admin"
	"tradejournal-billing/internal/api/billing"
	plansapi "tradejournal-billing/internal/api/plans"
	stripewebhooks "tradejournal-billing/internal/api/stripewebhook"
	tradesapi "tradejournal-billing/internal/api/trades"
	"tradejournal-billing/internal/api/users"
	"tradejournal-billing/internal/app/http/middleware"
	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/infra/identity"
)

type Deps struct {
	Sessions      identity.SessionAccessor
	Decisions     middleware.DecisionSource
	SessionCookie string

	Webhook *stripewebhooks.Handler
	Billing *billing.Handler
	Plans   *plansapi.Handler
	Users   *users.Handler
	Trades  *tradesapi.Handler
	Admin   *adminapi.Handler

	// Ready reports whether backing stores answer; nil means always ready.
	Ready func() error

	Logger *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// signature is checked over the raw body, so no body middleware here
	r.POST("/webhook/stripe", d.Webhook.StripeWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/plan", d.Plans.GetPlan)

	// Authenticated
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Sessions, log))
	api.GET("/me", d.Users.GetCurrentUser)
	api.GET("/subscription/status", d.Billing.GetSubscriptionStatus)
	api.GET("/billing/history", d.Billing.GetBillingHistory)

	actions := api.Group("/billing")
	actions.Use(middleware.SanitizeAndCleanInputMiddleware())
	actions.POST("/checkout", d.Billing.CreateCheckoutSession)
	actions.POST("/portal", d.Billing.CreateBillingPortal)
	actions.POST("/cancel", d.Billing.CancelSubscription)

	// Subscribed users
	subscribed := api.Group("/trades")
	subscribed.Use(middleware.RequireFullAccess(d.Decisions, log), middleware.SanitizeAndCleanInputMiddleware())
	subscribed.GET("", d.Trades.ListTrades)
	subscribed.POST("", d.Trades.CreateTrade)
	subscribed.DELETE("/:id", d.Trades.DeleteTrade)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.Sessions, log), middleware.RequireRole("admin"))
	admin.GET("/dashboard", d.Admin.AdminDashboard)
	admin.GET("/subscriptions", d.Admin.ListSubscriptions)
	admin.GET("/events", d.Admin.ListEvents)

	// Pages: the guard redirects; an allowed request gets the decision the
	// page renders from.
	pages := r.Group("/")
	pages.Use(middleware.PageGuard(d.SessionCookie, d.Sessions, d.Decisions, log))
	for _, p := range []string{
		string(access.RouteSubscribe),
		"/dashboard",
		"/trades",
		"/settings/*rest",
	} {
		pages.GET(p, servePage)
	}
}

func servePage(c *gin.Context) {
	resp := gin.H{"path": c.Request.URL.Path}
	if d, ok := c.Get("access_decision"); ok {
		resp["access"] = d
	}
	c.JSON(http.StatusOK, resp)
}
