package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/config"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/handlers"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/logger"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/middleware"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository/memory"
	redis_repo "github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository/redis"
	sqlite_repo "github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository/sqlite"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/router"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/server"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/service"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	sessions repository.SessionRepository
	states   repository.StateRepository
	closers  []func()
}

func (r *repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	repos := &repositories{}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, err
		}
		repos.closers = append(repos.closers, func() { _ = redisClient.Close() })
		log.Info().Str("address", cfg.RedisSettings.Address).Msg("Connected to redis")
	}

	var db *sqlx.DB
	if cfg.UsesSQLite() {
		var err error
		db, err = sqlite_repo.Open(cfg.SQLiteDSN)
		if err != nil {
			repos.Close()
			return nil, err
		}
		repos.closers = append(repos.closers, func() { _ = db.Close() })
		log.Info().Msg("Opened sqlite database")
	}

	switch cfg.AccountBackend {
	case config.BackendSQLite:
		repos.accounts = sqlite_repo.NewSQLiteAccountRepository(db)
	default:
		repos.accounts = memory.NewMemoryAccountRepository()
	}

	switch cfg.ProfileBackend {
	case config.BackendRedis:
		repos.profiles = redis_repo.NewRedisProfileRepository(redisClient)
	case config.BackendSQLite:
		repos.profiles = sqlite_repo.NewSQLiteProfileRepository(db)
	default:
		repos.profiles = memory.NewMemoryProfileRepository()
	}

	switch cfg.SessionBackend {
	case config.BackendRedis:
		repos.sessions = redis_repo.NewRedisSessionRepository(redisClient)
		repos.states = redis_repo.NewRedisStateRepository(redisClient)
	default:
		sessions := memory.NewMemorySessionRepository(time.Minute)
		repos.closers = append(repos.closers, sessions.StopCleanup)
		repos.sessions = sessions
		states := memory.NewMemoryStateRepository(time.Minute)
		repos.closers = append(repos.closers, states.StopCleanup)
		repos.states = states
	}

	log.Info().
		Str("accounts", cfg.AccountBackend).
		Str("profiles", cfg.ProfileBackend).
		Str("sessions", cfg.SessionBackend).
		Msg("Repositories ready")
	return repos, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server stopped gracefully.")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open repositories: %w", err)
	}
	defer repos.Close()

	var providers []service.FederatedProvider
	if googleConfig, ok := cfg.OAuthProviders["GOOGLE"]; ok {
		providers = append(providers, service.NewGoogleProvider(googleConfig))
	}
	registry := service.NewProviderRegistry(providers...)

	tokenService := service.NewJWTService(cfg.JWTSecret, cfg.SessionConfig.TokenDuration)
	authService := service.NewAuthService(
		repos.accounts,
		repos.sessions,
		repos.states,
		tokenService,
		registry,
		cfg.SessionConfig,
	)
	// Flows outlive the request that started them, so they run on a context
	// that is only cancelled after the server has drained.
	flowCtx, cancelFlows := context.WithCancel(context.Background())
	defer cancelFlows()
	clients := service.NewClientService(flowCtx, authService, repos.profiles, cfg.ClientIdleTimeout)

	app := server.New()
	clientID := middleware.ClientID(cfg.ClientCookieName)
	router.SetupAuthRoutes(app, handlers.NewAuthHandler(clients, authService), clientID)
	router.SetupUserRoutes(app, handlers.NewUserHandler(clients), clientID, middleware.SessionJWT(tokenService))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Strs("providers", registry.Names()).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := app.Shutdown(shutdownCtx)

		cancelFlows()
		clients.CloseAll()
		return err
	})

	return g.Wait()
}
