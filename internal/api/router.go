package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/ssea/accreditation-api/docs"
	"github.com/ssea/accreditation-api/internal/api/handler"
	"github.com/ssea/accreditation-api/internal/api/middleware"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
	"github.com/ssea/accreditation-api/internal/core/service"
)

// Dependencies carries everything the router needs, built in main and
// injected top-down; no handler reaches for hidden module-level state.
type Dependencies struct {
	Mongo      *mongo.Database
	Redis      *redis.Client
	Store      ports.SessionStore
	Controller *service.SessionController
	Phases     ports.PhaseService
	Users      ports.UserService
	Logger     zerolog.Logger
	// CookieTTLSeconds bounds the session cookie lifetime on page routes.
	CookieTTLSeconds int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accreditation"))
	e.Use(middleware.Session(deps.Store, func(c echo.Context, subjectID string) *domain.Identity {
		return deps.Controller.Current(c.Request().Context(), subjectID)
	}))

	gate := middleware.NewGate(deps.Controller.State)

	authHandler := handler.NewAuthHandler(deps.Controller, deps.CookieTTLSeconds)
	phaseHandler := handler.NewPhaseHandler(deps.Phases)
	userHandler := handler.NewUserHandler(deps.Users)
	pageHandler := handler.NewPageHandler(deps.Phases)

	// --- Auth ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/logout", authHandler.Logout)
	e.GET("/v1/auth/session", authHandler.Current)

	// --- Phases ---
	phases := e.Group("/v1/phases")
	phases.GET("", phaseHandler.List, gate.Require(domain.RoleAdmin, domain.RoleCoordinator))
	phases.POST("", phaseHandler.Create, gate.Require(domain.RoleAdmin))
	phases.PUT("/:id/status", phaseHandler.SetStatus, gate.Require(domain.RoleAdmin))
	phases.PUT("/:id/link", phaseHandler.SetLink, gate.Require(domain.RoleCoordinator))
	phases.GET("/:id/audit", phaseHandler.Audit, gate.Require(domain.RoleAdmin))

	// --- Users ---
	e.POST("/v1/users", userHandler.Provision, gate.Require(domain.RoleAdmin))

	// --- Pages ---
	e.GET("/login", pageHandler.Login, gate.Ready())
	e.GET("/admin", pageHandler.Dashboard, gate.Page(domain.RoleAdmin))
	e.GET("/coordinator", pageHandler.Dashboard, gate.Page(domain.RoleCoordinator))
	e.GET("/unauthorized", pageHandler.Unauthorized)
	e.GET("/", pageHandler.Root, gate.Ready())
	e.RouteNotFound("/*", pageHandler.Root, gate.Ready())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
