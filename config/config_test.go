package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/test")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("STRIPE_PRICE_ID", "price_pro")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromViper_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.StripeWebhookTolerance)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.True(t, cfg.WebhookAckOnError)
	assert.Equal(t, "sb-access-token", cfg.SessionCookie)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_ACK_ON_ERROR", "false")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("APP_URL", "https://journal.example.com/")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.False(t, cfg.WebhookAckOnError)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "https://journal.example.com", cfg.AppURL)
}

func TestFromViper_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")
	assert.Contains(t, err.Error(), "JWT_SECRET or OIDC_ISSUER_URL")
}

func TestValidate_OIDCNeedsClientID(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OIDC_ISSUER_URL", "https://issuer.example.com")

	_, err := FromViper(viper.New())
	assert.ErrorContains(t, err, "OIDC_CLIENT_ID")
}
