package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	AppEnv     string `mapstructure:"APP_ENV"`
	AppURL     string `mapstructure:"APP_URL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	DBURL         string `mapstructure:"DB_URL"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	RedisURL       string        `mapstructure:"REDIS_URL"`
	AccessCacheTTL time.Duration `mapstructure:"ACCESS_CACHE_TTL"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	OIDCIssuerURL string `mapstructure:"OIDC_ISSUER_URL"`
	OIDCClientID  string `mapstructure:"OIDC_CLIENT_ID"`
	SessionCookie string `mapstructure:"SESSION_COOKIE"`

	StripeSecretKey        string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret    string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID          string        `mapstructure:"STRIPE_PRICE_ID"`
	StripeWebhookTolerance time.Duration `mapstructure:"STRIPE_WEBHOOK_TOLERANCE"`
	WebhookAckOnError      bool          `mapstructure:"WEBHOOK_ACK_ON_ERROR"`
	ProviderTimeout        time.Duration `mapstructure:"PROVIDER_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":                     "8080",
	"APP_ENV":                  "development",
	"APP_URL":                  "http://localhost:5173",
	"CORS_ORIGIN":              "http://localhost:5173",
	"DB_URL":                   "",
	"DB_AUTO_MIGRATE":          false,
	"REDIS_URL":                "",
	"ACCESS_CACHE_TTL":         "60s",
	"JWT_SECRET":               "",
	"OIDC_ISSUER_URL":          "",
	"OIDC_CLIENT_ID":           "",
	"SESSION_COOKIE":           "sb-access-token",
	"STRIPE_SECRET_KEY":        "",
	"STRIPE_WEBHOOK_SECRET":    "",
	"STRIPE_PRICE_ID":          "",
	"STRIPE_WEBHOOK_TOLERANCE": "5m",
	"WEBHOOK_ACK_ON_ERROR":     true,
	"PROVIDER_TIMEOUT":         "10s",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper applies defaults and environment bindings to v and decodes it.
func FromViper(v *viper.Viper) (*Config, error) {
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	for key, val := range map[string]string{
		"DB_URL":                c.DBURL,
		"STRIPE_SECRET_KEY":     c.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": c.StripeWebhookSecret,
		"STRIPE_PRICE_ID":       c.StripePriceID,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if c.JWTSecret == "" && c.OIDCIssuerURL == "" {
		missing = append(missing, "JWT_SECRET or OIDC_ISSUER_URL")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}
	if c.OIDCIssuerURL != "" && c.OIDCClientID == "" {
		return errors.New("OIDC_CLIENT_ID is required when OIDC_ISSUER_URL is set")
	}
	if c.ProviderTimeout < 0 || c.AccessCacheTTL < 0 {
		return errors.New("PROVIDER_TIMEOUT and ACCESS_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
