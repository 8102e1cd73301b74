package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/port"
	"github.com/Discdoor/dd-auth/internal/infra/config"
	"github.com/Discdoor/dd-auth/internal/transport/http/handlers"
	"github.com/Discdoor/dd-auth/internal/transport/http/middleware"
	"github.com/Discdoor/dd-auth/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Users    *usecase.UserService
	Sessions *usecase.SessionService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Cache    port.UserCache
	Database DatabaseChecker
	Redis    RedisChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// RedisChecker exposes readiness behaviour for cache backends.
type RedisChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Redis != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Redis.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		api.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}

	authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Sessions)
	authHandler.RegisterRoutes(api.Group("/auth"))

	userHandler := handlers.NewUserHandler(deps.Services.Users, deps.Services.Sessions, deps.Cache)
	userHandler.RegisterRoutes(api.Group("/users"))

	return r
}
