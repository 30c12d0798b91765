package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, time.Hour, cfg.JWT.Expiration)
	require.Equal(t, "usd", cfg.Payment.Currency)
	require.Equal(t, 6, cfg.Catalog.PopularLimit)
	require.Equal(t, 5*time.Minute, cfg.Catalog.PopularCacheTTL)
	require.Equal(t, "scuola", cfg.Database.Name)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	require.Equal(t, time.Hour, parseDuration("", time.Hour))
	require.Equal(t, time.Hour, parseDuration("garbage", time.Hour))
	require.Equal(t, 2*time.Minute, parseDuration("2m", time.Hour))
}

func TestSplitAndTrim(t *testing.T) {
	require.Nil(t, splitAndTrim(""))
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,"))
}
