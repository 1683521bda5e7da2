package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradejournal-billing/config"
	"tradejournal-billing/database"
	adminapi "tradejournal-billing/internal/api/admin"
	"tradejournal-billing/internal/api/billing"
	plansapi "tradejournal-billing/internal/api/plans"
	stripewebhooks "tradejournal-billing/internal/api/stripewebhook"
	tradesapi "tradejournal-billing/internal/api/trades"
	"tradejournal-billing/internal/api/users"
	routes "tradejournal-billing/internal/app/http"
	"tradejournal-billing/internal/app/http/middleware"
	"tradejournal-billing/internal/entitlement"
	"tradejournal-billing/internal/infra/cache"
	"tradejournal-billing/internal/infra/identity"
	"tradejournal-billing/internal/infra/logging"
	stripeinfra "tradejournal-billing/internal/infra/stripe"
	"tradejournal-billing/internal/reconcile"
	"tradejournal-billing/internal/repository"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBURL, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			return err
		}
	}

	var decisionCache *cache.DecisionCache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		decisionCache = cache.NewDecisionCache(rdb, cfg.AccessCacheTTL, log)
	} else {
		log.Info("REDIS_URL not set, access decisions are computed per request")
	}

	sessions, err := newSessionAccessor(ctx, cfg)
	if err != nil {
		return err
	}

	subs := repository.NewSubscriptionRepository(db)
	profiles := repository.NewProfileRepository(db)
	events := repository.NewEventRepository(db)
	provider := stripeinfra.NewClient(cfg.StripeSecretKey, cfg.ProviderTimeout)
	projector := reconcile.NewProjector(subs, profiles, decisionCache, log)
	decisions := entitlement.NewService(subs, decisionCache)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Sessions:      sessions,
		Decisions:     decisions,
		SessionCookie: cfg.SessionCookie,
		Webhook: stripewebhooks.NewHandler(stripewebhooks.Config{
			Verifier:   stripeinfra.NewVerifier(cfg.StripeWebhookSecret, cfg.StripeWebhookTolerance),
			Events:     events,
			Provider:   provider,
			Projector:  projector,
			Lookup:     subs,
			AckOnError: cfg.WebhookAckOnError,
			Logger:     log,
		}),
		Billing: billing.NewHandler(billing.NewGateway(billing.GatewayConfig{
			Provider:  provider,
			Profiles:  profiles,
			Subs:      subs,
			Projector: projector,
			PriceID:   cfg.StripePriceID,
			AppURL:    cfg.AppURL,
			Logger:    log,
		}), decisions, log),
		Plans:  plansapi.NewHandler(provider, cfg.StripePriceID, log),
		Users:  users.NewHandler(profiles, subs, log),
		Trades: tradesapi.NewHandler(repository.NewTradeRepository(db), log),
		Admin:  adminapi.NewHandler(subs, events),
		Ready: func() error {
			return sqlDB.PingContext(context.Background())
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("address", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// newSessionAccessor prefers OIDC when an issuer is configured.
func newSessionAccessor(ctx context.Context, cfg *config.Config) (identity.SessionAccessor, error) {
	if cfg.OIDCIssuerURL != "" {
		v, err := identity.NewOIDCVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return identity.NewHMACVerifier(cfg.JWTSecret), nil
}
