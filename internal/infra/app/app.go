package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/port"
	"github.com/Discdoor/dd-auth/internal/infra/config"
	"github.com/Discdoor/dd-auth/internal/infra/database"
	kafkainfra "github.com/Discdoor/dd-auth/internal/infra/kafka"
	"github.com/Discdoor/dd-auth/internal/infra/logger"
	redisinfra "github.com/Discdoor/dd-auth/internal/infra/redis"
	"github.com/Discdoor/dd-auth/internal/infra/security"
	"github.com/Discdoor/dd-auth/internal/infra/telemetry"
	postgresrepo "github.com/Discdoor/dd-auth/internal/repository/postgres"
	redisrepo "github.com/Discdoor/dd-auth/internal/repository/redis"
	"github.com/Discdoor/dd-auth/internal/transport/http/routes"
	"github.com/Discdoor/dd-auth/internal/usecase"
)

// Application owns the wired dependency graph and the HTTP serve loop.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
	events closer
}

type closer interface {
	Close() error
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	hasher, err := security.NewHasher(cfg.Crypto.Salt, cfg.Crypto.Rounds)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init hasher: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	userCache := redisrepo.NewUserCacheRepository(redisClient.Client(), cfg.Redis.CacheViewPrefix, cfg.Redis.CacheViewTTL)

	var eventPublisher port.EventPublisher
	var eventCloser closer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			eventCloser = producer
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	userService := usecase.NewUserService(repos.Users, userCache, eventPublisher, hasher, cfg.Accounts, cfg.Crypto.Algorithm, log)
	sessionService := usecase.NewSessionService(repos.Sessions, eventPublisher, cfg.Session.MaxAge, cfg.Session.KeyByteLength, log)
	authService := usecase.NewAuthService(userService, sessionService, log)

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Cache:    userCache,
		Database: pool,
		Redis:    redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Users:    userService,
			Sessions: sessionService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
		events: eventCloser,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.events != nil {
			_ = a.events.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
