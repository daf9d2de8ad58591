package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/proxygate/accounts/docs"
	"github.com/proxygate/accounts/internal/api/handler"
	"github.com/proxygate/accounts/internal/api/middleware"
	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/core/ports"
	"github.com/proxygate/accounts/internal/infrastructure/http/handlers"
	"github.com/proxygate/accounts/internal/infrastructure/validation"
)

// Deps collects what the HTTP layer needs from the composition root.
type Deps struct {
	Accounts   ports.AccountService
	Policy     domain.PasswordPolicy
	AdminRealm string
	Readiness  map[string]handlers.Pinger
	Log        zerolog.Logger

	// Registry overrides the default Prometheus registry. Tests use a fresh one.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New(deps.Policy)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "proxy_accounts",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Log)
	authHandler := handler.NewAuthHandler(deps.Accounts)
	adminAuth := middleware.Auth(deps.Accounts, deps.AdminRealm)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public routes ---
	e.POST("/accounts", accountHandler.Create)
	e.POST("/auth/verify", authHandler.Verify)

	// --- Admin routes ---
	admin := e.Group("/accounts", adminAuth, adminOnly)
	admin.GET("", accountHandler.List)
	admin.GET("/:username", accountHandler.Get)
	admin.PATCH("/:username", accountHandler.Update)
	admin.POST("/:username/approve", accountHandler.Approve)
	admin.DELETE("/:username", accountHandler.Delete)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
