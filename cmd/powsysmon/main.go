package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/audit"
	"github.com/meminc/powsysmon/internal/cache"
	"github.com/meminc/powsysmon/internal/config"
	httptransport "github.com/meminc/powsysmon/internal/http"
	"github.com/meminc/powsysmon/internal/http/handler"
	httpmiddleware "github.com/meminc/powsysmon/internal/http/middleware"
	apimiddleware "github.com/meminc/powsysmon/internal/middleware"
	"github.com/meminc/powsysmon/internal/mutation"
	"github.com/meminc/powsysmon/internal/repository"
	"github.com/meminc/powsysmon/internal/server"
	"github.com/meminc/powsysmon/internal/service"
	"github.com/meminc/powsysmon/internal/session"
	"github.com/meminc/powsysmon/internal/telemetry"
	"github.com/meminc/powsysmon/internal/token"
)

var version = "dev"

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newRedisClient,
			newCache,
			newSessionStore,
			newTokenService,
			newUserRepository,
			newTopologyRepository,
			newAlarmRepository,
			newAuditRepository,
			newAuditRecorder,
			newCoordinator,
			newRateLimiter,
			service.NewAuthService,
			newTopologyService,
			service.NewAlarmService,
			handler.NewAuthHandler,
			handler.NewTopologyHandler,
			handler.NewAlarmHandler,
			newHealthHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newCache(client redis.UniversalClient) cache.Cache {
	return cache.NewRedis(client)
}

func newSessionStore(client redis.UniversalClient, node *snowflake.Node, cfg config.Config) *session.Store {
	return session.NewStore(client, node, cfg.SessionTTL)
}

func newTokenService(cfg config.Config) (*token.Service, error) {
	return token.New([]byte(cfg.TokenSecret), cfg.TokenKID, cfg.AccessTokenTTL)
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newTopologyRepository(pool *pgxpool.Pool) repository.TopologyRepository {
	return repository.NewPostgresTopologyRepo(pool)
}

func newAlarmRepository(pool *pgxpool.Pool) repository.AlarmRepository {
	return repository.NewPostgresAlarmRepo(pool)
}

func newAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return repository.NewPostgresAuditRepo(pool)
}

func newAuditRecorder(repo repository.AuditRepository, node *snowflake.Node, logger *zap.Logger) *audit.Recorder {
	return audit.NewRecorder(repo, node, logger)
}

func newCoordinator(c cache.Cache, recorder *audit.Recorder, logger *zap.Logger) *mutation.Coordinator {
	return mutation.NewCoordinator(c, recorder, logger)
}

func newTopologyService(repo repository.TopologyRepository, c cache.Cache, coord *mutation.Coordinator, logger *zap.Logger) *service.TopologyService {
	return service.NewTopologyService(repo, c, coord, logger)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newAuthMiddleware(tokens *token.Service, sessions *session.Store, logger *zap.Logger) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Tokens: tokens, Sessions: sessions, Logger: logger}
}

func newHealthHandler(pool *pgxpool.Pool) *handler.HealthHandler {
	return handler.NewHealthHandler(pool, version)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
