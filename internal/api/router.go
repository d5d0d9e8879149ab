package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the OpenAPI document served under /swagger.
	_ "github.com/supportdesk/support-system/docs"
	"github.com/supportdesk/support-system/internal/api/handler"
	"github.com/supportdesk/support-system/internal/api/middleware"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
	"github.com/supportdesk/support-system/internal/infrastructure/http/handlers"
)

// RouterConfig carries everything the HTTP layer needs.
type RouterConfig struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	// EnableMetrics registers the echoprometheus collectors with the default
	// registry; it can only be set on one router per process.
	EnableMetrics bool
	Now           func() time.Time

	Resolver middleware.PrincipalResolver
	Auth     ports.AuthService
	Users    ports.UserService
	Tickets  ports.TicketService
	Admin    ports.AdminService

	Health map[string]handlers.Check
	System handler.SystemInfo
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(cfg.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, handler.HeaderIdempotencyKey},
		AllowCredentials: true,
	}))
	if cfg.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("support"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Public ---
	info := handler.NewInfoHandler(cfg.System.Algorithm, cfg.System.TokenLifetime)
	e.GET("/", info.Root)
	e.GET("/info", info.Info)
	e.GET("/api/status", info.Status)

	health := handlers.NewHealthHandler(cfg.Health)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(cfg.Auth)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)

	// --- Authenticated ---
	authn := middleware.Authenticate(cfg.Resolver, cfg.Now)
	staff := middleware.RequireAnyOf(domain.StaffRoles...)
	admin := middleware.RequireAdmin()

	e.GET("/auth/me", authHandler.Me, authn)

	// authn is per route so unknown /api paths still answer 404.
	api := e.Group("/api")

	users := handler.NewUserHandler(cfg.Users)
	api.GET("/users/me", authHandler.Me, authn)
	api.GET("/users/:id", users.Get, authn)
	api.POST("/users", users.Create, authn, admin)

	tickets := handler.NewTicketHandler(cfg.Tickets)
	api.POST("/tickets", tickets.Create, authn)
	api.GET("/tickets", tickets.List, authn, staff)
	api.GET("/tickets/:id", tickets.Get, authn)
	api.PUT("/tickets/:id", tickets.Update, authn)
	api.DELETE("/tickets/:id", tickets.Delete, authn)
	api.GET("/my-tickets", tickets.ListMine, authn)

	adminHandler := handler.NewAdminHandler(cfg.Admin, cfg.System, cfg.Now)
	adminGroup := api.Group("/admin")
	adminGroup.GET("/users", adminHandler.ListUsers, authn, admin)
	adminGroup.PATCH("/users/:id/role", adminHandler.ChangeRole, authn, admin)
	adminGroup.GET("/monitoring", adminHandler.Monitoring, authn, admin)
	adminGroup.GET("/system", adminHandler.System, authn, admin)

	return e
}
