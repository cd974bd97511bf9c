package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/metalprofile/corporate-site/internal/api/handler"
	"github.com/metalprofile/corporate-site/internal/api/middleware"
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from. Mongo may
// be nil when the audit mirror is disabled.
type Dependencies struct {
	Identity ports.IdentityService
	News     ports.NewsService
	Audit    ports.AuditService
	Stats    ports.StatsService
	Redis    *redis.Client
	Mongo    *mongo.Database
	TokenTTL time.Duration
	Log      zerolog.Logger
	// Registry receives the HTTP metrics; nil uses the Prometheus defaults.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(prometheusConfig(deps.Registry)))

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Audit, deps.TokenTTL)
	newsHandler := handler.NewNewsHandler(deps.News, deps.Audit)
	adminHandler := handler.NewAdminHandler(deps.Audit, deps.Stats)

	requireSession := middleware.Auth(deps.Identity)
	optionalSession := middleware.OptionalAuth(deps.Identity)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, requireSession)
	auth.GET("/me", authHandler.Me, requireSession)

	// --- News routes ---
	v1 := e.Group("/v1")
	news := v1.Group("/news")
	news.GET("", newsHandler.List, optionalSession)
	news.GET("/:id", newsHandler.Get, optionalSession)
	news.POST("", newsHandler.Create, requireSession, middleware.RBAC(domain.RoleAdmin, domain.RolePartner))
	news.PATCH("/:id", newsHandler.Update, requireSession)
	news.POST("/:id/comments", newsHandler.AddComment, requireSession)
	news.POST("/:id/comments/:commentId/approve", newsHandler.ApproveComment, requireSession)
	news.DELETE("/:id/comments/:commentId", newsHandler.DeleteComment, requireSession)

	// --- Admin routes ---
	admin := v1.Group("/admin", requireSession, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/audit", adminHandler.AuditLog)
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Redis, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured access line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func prometheusConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "corporate_site"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
