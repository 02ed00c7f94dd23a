package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultJWTSecret = "a_very_secret_key_change_me"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type SessionConfig struct {
	// Lifetime of a signed session token and of its stored session.
	TokenDuration time.Duration `mapstructure:"SESSION_TOKEN_DURATION"`
	// How long a popup sign-in may stay open before its state expires.
	AuthStateExpiry time.Duration `mapstructure:"OAUTH_STATE_EXPIRY"`
}

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type Config struct {
	// Server port
	Port      string
	AppEnv    string
	LogLevel  string
	JWTSecret string

	// memory or sqlite
	AccountBackend string
	// memory, redis or sqlite
	ProfileBackend string
	// memory or redis; also holds pending popup sign-ins
	SessionBackend string
	SQLiteDSN      string
	RedisSettings  RedisSettings
	SessionConfig  SessionConfig

	OAuthProviders   map[string]*oauth2.Config
	ClientCookieName string
	// How long an unused client's flow state is kept in memory.
	ClientIdleTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("SESSION_TOKEN_DURATION", "24h")
	v.SetDefault("OAUTH_STATE_EXPIRY", "5m")
	v.SetDefault("ACCOUNT_BACKEND", BackendMemory)
	v.SetDefault("PROFILE_BACKEND", BackendMemory)
	v.SetDefault("SESSION_BACKEND", BackendMemory)
	v.SetDefault("SQLITE_DSN", "file:storefront.db?_fk=1")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CLIENT_COOKIE_NAME", "scs_client")
	v.SetDefault("CLIENT_IDLE_TIMEOUT", "30m")
}

// LoadConfig reads .env from the working directory or ./config, overridden by
// the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	// Load configuration
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	// JWT Secret
	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == defaultJWTSecret {
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET environment variable or in config file.")
	}

	tokenDuration := v.GetDuration("SESSION_TOKEN_DURATION")
	if tokenDuration <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TOKEN_DURATION %q", v.GetString("SESSION_TOKEN_DURATION"))
	}
	stateExpiry := v.GetDuration("OAUTH_STATE_EXPIRY")
	if stateExpiry <= 0 {
		stateExpiry = 5 * time.Minute
		log.Printf("Invalid OAUTH_STATE_EXPIRY '%s', defaulting to '%s'", v.GetString("OAUTH_STATE_EXPIRY"), stateExpiry)
	}

	clientIdleTimeout := v.GetDuration("CLIENT_IDLE_TIMEOUT")
	if clientIdleTimeout <= 0 {
		clientIdleTimeout = 30 * time.Minute
		log.Printf("Invalid CLIENT_IDLE_TIMEOUT '%s', defaulting to '%s'", v.GetString("CLIENT_IDLE_TIMEOUT"), clientIdleTimeout)
	}

	accountBackend, err := backend(v, "ACCOUNT_BACKEND", BackendMemory, BackendSQLite)
	if err != nil {
		return nil, err
	}
	profileBackend, err := backend(v, "PROFILE_BACKEND", BackendMemory, BackendRedis, BackendSQLite)
	if err != nil {
		return nil, err
	}
	sessionBackend, err := backend(v, "SESSION_BACKEND", BackendMemory, BackendRedis)
	if err != nil {
		return nil, err
	}

	// OAuth Configuration
	oauthProviders := make(map[string]*oauth2.Config)
	if clientID := v.GetString("GOOGLE_CLIENT_ID"); clientID != "" {
		oauthProviders["GOOGLE"] = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}
	} else {
		log.Println("GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}

	return &Config{
		Port:           v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		JWTSecret:      jwtSecret,
		AccountBackend: accountBackend,
		ProfileBackend: profileBackend,
		SessionBackend: sessionBackend,
		SQLiteDSN:      v.GetString("SQLITE_DSN"),
		RedisSettings: RedisSettings{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SessionConfig: SessionConfig{
			TokenDuration:   tokenDuration,
			AuthStateExpiry: stateExpiry,
		},
		OAuthProviders:    oauthProviders,
		ClientCookieName:  v.GetString("CLIENT_COOKIE_NAME"),
		ClientIdleTimeout: clientIdleTimeout,
	}, nil
}

func backend(v *viper.Viper, key string, supported ...string) (string, error) {
	value := strings.ToLower(v.GetString(key))
	if !slices.Contains(supported, value) {
		return "", fmt.Errorf("unsupported %s %q, expected one of %v", key, value, supported)
	}
	return value, nil
}

// UsesRedis reports whether any store is backed by redis.
func (c *Config) UsesRedis() bool {
	return c.ProfileBackend == BackendRedis || c.SessionBackend == BackendRedis
}

// UsesSQLite reports whether any store is backed by sqlite.
func (c *Config) UsesSQLite() bool {
	return c.AccountBackend == BackendSQLite || c.ProfileBackend == BackendSQLite
}
