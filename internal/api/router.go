package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/storefront-client/docs"
	"github.com/99minutos/storefront-client/internal/api/handler"
	"github.com/99minutos/storefront-client/internal/api/middleware"
	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

const metricsSubsystem = "storefront_client"

// Dependencies are the services the dashboard API is built on.
type Dependencies struct {
	Sessions  ports.SessionManager
	Catalog   ports.CatalogService
	Accounts  ports.AccountService
	Readiness map[string]ports.Pinger
	Log       zerolog.Logger
	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	metricsMiddleware, metricsHandler := httpMetrics(deps.Registry)
	e.Use(metricsMiddleware)

	// --- Health probes and tooling (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – is the credential backend up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session and accounts ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	dashboardHandler := handler.NewDashboardHandler(deps.Sessions, deps.Catalog)

	syncSession := middleware.SyncSession(deps.Sessions, deps.Log)
	e.GET("/session", sessionHandler.Get, syncSession)
	e.GET("/dashboard", dashboardHandler.Get, syncSession)
	e.POST("/session/login", sessionHandler.Login)
	e.POST("/session/logout", sessionHandler.Logout)
	e.POST("/accounts/register", accountHandler.Register)

	// --- Client dashboard ---
	notificationHandler := handler.NewNotificationHandler(deps.Sessions, deps.Log)
	client := e.Group("/notifications", syncSession, middleware.RequireView(deps.Sessions, domain.ViewClient))
	client.GET("", notificationHandler.List)
	client.GET("/stream", notificationHandler.Stream)

	// --- Admin dashboard ---
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	admin := e.Group("/catalog", syncSession, middleware.RequireView(deps.Sessions, domain.ViewAdmin))
	admin.GET("/categories", catalogHandler.Categories)
	admin.POST("/products", catalogHandler.AddProduct)

	return e
}

func httpMetrics(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc) {
	if reg == nil {
		return echoprometheus.NewMiddleware(metricsSubsystem), echoprometheus.NewHandler()
	}
	mw := echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: reg,
	})
	h := echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
	return mw, h
}
