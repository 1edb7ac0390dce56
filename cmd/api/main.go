package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/acquisitions/users-api/docs"
	"github.com/acquisitions/users-api/internal/api"
	"github.com/acquisitions/users-api/internal/api/handler"
	"github.com/acquisitions/users-api/internal/core/ports"
	"github.com/acquisitions/users-api/internal/core/service"
	"github.com/acquisitions/users-api/internal/infrastructure/db/mongo"
	"github.com/acquisitions/users-api/internal/infrastructure/db/postgres"
	"github.com/acquisitions/users-api/internal/infrastructure/db/redis"
	"github.com/acquisitions/users-api/internal/infrastructure/security"
	"github.com/acquisitions/users-api/internal/pkg/config"
	"github.com/acquisitions/users-api/pkg/logger"
)

const serviceName = "acquisitions-api"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("service stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	started := time.Now()

	if cfg.SecretGenerated {
		log.Warn().Msg("JWT_SECRET not set; using a random per-process secret, sessions will not survive a restart")
	}

	repo, storePinger, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	readiness := map[string]handler.Pinger{cfg.Store.Driver: storePinger}

	var limiter *redis.RateLimiter
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
		limiter = redis.NewRateLimiter(rdb, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow)
		readiness["redis"] = redis.NewPinger(rdb)
	}

	tokens, err := security.NewJWTService(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	hasher := security.NewBcryptHasher(security.DefaultCost)

	deps := api.Deps{
		AuthService: service.NewAuthService(repo, hasher, log),
		UserService: service.NewUserService(repo, log),
		Tokens:      tokens,
		Readiness:   readiness,
		Logger:      log,
		Started:     started,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	e := api.NewRouter(api.RouterConfig{
		Production:       cfg.IsProduction(),
		CookieDomain:     cfg.Auth.CookieDomain,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		AllowOrigins:     cfg.Security.CORSAllowedOrigins,
		BodyLimit:        cfg.Security.BodyLimit,
		RateLimitWindow:  cfg.Security.RateLimitWindow,
		SessionTTL:       tokens.TTL(),
	}, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured user store and returns its repository,
// a readiness pinger and a close function.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, handler.Pinger, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := mongo.NewUserRepository(store.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return repo, store, func() { _ = store.Close(context.Background()) }, nil

	default:
		store, err := postgres.Connect(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		log.Info().Msg("connected to postgres, migrations applied")
		return postgres.NewUserRepository(store.DB), store, func() { _ = store.Close() }, nil
	}
}
