package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, DriverPostgres, cfg.Store.Driver)
	require.True(t, cfg.Auth.AllowAdminSignup)
	require.Equal(t, 100, cfg.Security.RateLimitRequests)
	require.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	require.Equal(t, []string{"*"}, cfg.Security.CORSAllowedOrigins)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_GeneratesSecretOutsideProduction(t *testing.T) {
	a, err := load(t, map[string]string{"ENV": EnvDevelopment})
	require.NoError(t, err)
	require.True(t, a.SecretGenerated)
	require.GreaterOrEqual(t, len(a.Auth.JWTSecret), MinSecretLength)

	b, err := load(t, map[string]string{"ENV": EnvDevelopment})
	require.NoError(t, err)
	require.NotEqual(t, a.Auth.JWTSecret, b.Auth.JWTSecret, "each process gets its own secret")
}

func TestLoad_KeepsConfiguredSecret(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "dev-secret"})
	require.NoError(t, err)
	require.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	require.False(t, cfg.SecretGenerated)
}

func TestLoad_ProductionSecret(t *testing.T) {
	_, err := load(t, map[string]string{"ENV": EnvProduction})
	require.ErrorContains(t, err, "JWT_SECRET is required")

	_, err = load(t, map[string]string{"ENV": EnvProduction, "JWT_SECRET": "short"})
	require.ErrorContains(t, err, "at least 32 bytes")

	cfg, err := load(t, map[string]string{
		"ENV":        EnvProduction,
		"JWT_SECRET": strings.Repeat("s", MinSecretLength),
	})
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.False(t, cfg.SecretGenerated)
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	_, err := load(t, map[string]string{"ENV": "staging"})
	require.ErrorContains(t, err, "ENV must be one of")

	_, err = load(t, map[string]string{"STORE_DRIVER": "sqlite"})
	require.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"STORE_DRIVER":         DriverMongo,
		"ALLOW_ADMIN_SIGNUP":   "true",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"RATE_LIMIT_WINDOW":    "30s",
		"REDIS_DB":             "2",
	})
	require.NoError(t, err)
	require.Equal(t, DriverMongo, cfg.Store.Driver)
	require.True(t, cfg.Auth.AllowAdminSignup)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.Security.RateLimitWindow)
	require.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_AdminSignupDefaultsByEnvironment(t *testing.T) {
	secret := strings.Repeat("s", MinSecretLength)

	cfg, err := load(t, map[string]string{"ENV": EnvTest})
	require.NoError(t, err)
	require.True(t, cfg.Auth.AllowAdminSignup)

	cfg, err = load(t, map[string]string{"ENV": EnvProduction, "JWT_SECRET": secret})
	require.NoError(t, err)
	require.False(t, cfg.Auth.AllowAdminSignup)

	cfg, err = load(t, map[string]string{"ENV": EnvProduction, "JWT_SECRET": secret, "ALLOW_ADMIN_SIGNUP": "true"})
	require.NoError(t, err)
	require.True(t, cfg.Auth.AllowAdminSignup)

	cfg, err = load(t, map[string]string{"ALLOW_ADMIN_SIGNUP": "false"})
	require.NoError(t, err)
	require.False(t, cfg.Auth.AllowAdminSignup)
}
