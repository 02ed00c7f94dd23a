package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(nil))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, BackendMemory, cfg.AccountBackend)
		assert.Equal(t, BackendMemory, cfg.ProfileBackend)
		assert.Equal(t, BackendMemory, cfg.SessionBackend)
		assert.False(t, cfg.UsesRedis())
		assert.False(t, cfg.UsesSQLite())
		assert.Equal(t, 24*time.Hour, cfg.SessionConfig.TokenDuration)
		assert.Equal(t, 5*time.Minute, cfg.SessionConfig.AuthStateExpiry)
		assert.Equal(t, "scs_client", cfg.ClientCookieName)
		assert.Equal(t, 30*time.Minute, cfg.ClientIdleTimeout)
		assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
		assert.Empty(t, cfg.OAuthProviders, "Google should be disabled without a client id")
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{
			"APP_PORT":               "9000",
			"ACCOUNT_BACKEND":        "SQLite",
			"PROFILE_BACKEND":        "redis",
			"SESSION_BACKEND":        "redis",
			"SESSION_TOKEN_DURATION": "30m",
			"CLIENT_IDLE_TIMEOUT":    "2h",
			"REDIS_ADDRESS":          "redis:6379",
			"REDIS_DB":               2,
			"GOOGLE_CLIENT_ID":       "client-id",
			"GOOGLE_CLIENT_SECRET":   "client-secret",
			"GOOGLE_REDIRECT_URL":    "http://localhost:9000/api/auth/google/callback",
		}))
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, BackendSQLite, cfg.AccountBackend)
		assert.Equal(t, BackendRedis, cfg.ProfileBackend)
		assert.Equal(t, BackendRedis, cfg.SessionBackend)
		assert.True(t, cfg.UsesRedis())
		assert.True(t, cfg.UsesSQLite())
		assert.Equal(t, 30*time.Minute, cfg.SessionConfig.TokenDuration)
		assert.Equal(t, 2*time.Hour, cfg.ClientIdleTimeout)
		assert.Equal(t, RedisSettings{Address: "redis:6379", DB: 2}, cfg.RedisSettings)

		google, ok := cfg.OAuthProviders["GOOGLE"]
		require.True(t, ok)
		assert.Equal(t, "client-id", google.ClientID)
		assert.Equal(t, "client-secret", google.ClientSecret)
		assert.Contains(t, google.Scopes, "openid")
	})

	t.Run("InvalidStateExpiryFallsBack", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{"OAUTH_STATE_EXPIRY": "soon"}))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.SessionConfig.AuthStateExpiry)
	})

	t.Run("InvalidClientIdleTimeoutFallsBack", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{"CLIENT_IDLE_TIMEOUT": "-1m"}))
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.ClientIdleTimeout)
	})

	t.Run("InvalidTokenDuration", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{"SESSION_TOKEN_DURATION": "0s"}))
		assert.Error(t, err)
	})

	t.Run("UnsupportedBackends", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{"ACCOUNT_BACKEND": "redis"}))
		assert.ErrorContains(t, err, "ACCOUNT_BACKEND")

		_, err = fromViper(newTestViper(map[string]any{"PROFILE_BACKEND": "postgres"}))
		assert.ErrorContains(t, err, "PROFILE_BACKEND")

		_, err = fromViper(newTestViper(map[string]any{"SESSION_BACKEND": "sqlite"}))
		assert.ErrorContains(t, err, "SESSION_BACKEND")
	})
}
