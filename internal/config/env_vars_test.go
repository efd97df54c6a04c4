package config_test

import (
	"testing"

	"github.com/invoiceagent/gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "http://localhost:8000/api/v1", cfg.GetAPIBaseURL())
	require.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/", cfg.GetDirectoryEndpoint())
	require.Empty(t, cfg.GetIssuerURL(), "no issuer without a user pool")
	require.Equal(t, "http://localhost:8080/callback", cfg.GetOAuthRedirectURI())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "PROD")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_abc123")
	t.Setenv("COGNITO_ENDPOINT", "http://localhost:9229/")

	cfg, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.GetPort())
	require.Equal(t, "PROD", cfg.GetEnv())
	require.Equal(t, "http://localhost:9229/", cfg.GetDirectoryEndpoint())
	require.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_abc123", cfg.GetIssuerURL())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")

	cfg, err := config.New()
	require.NoError(t, err)

	origins := cfg.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://localhost:5173"))
	require.True(t, origins.IsAllowedOrigin("https://app.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
}
