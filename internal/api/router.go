package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetops/transport-fleet/internal/api/handler"
	"github.com/fleetops/transport-fleet/internal/api/middleware"
	"github.com/fleetops/transport-fleet/internal/core/domain"
	"github.com/fleetops/transport-fleet/internal/core/ports"
)

// RouterDeps carries everything the HTTP layer needs; services are built by
// the caller so the router stays free of persistence wiring.
type RouterDeps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Vehicles ports.VehicleService
	Mongo    *mongo.Database
	Redis    *redis.Client

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("fleet"))

	authMiddleware := middleware.Auth(deps.JWTSecret, deps.JWTIssuer, deps.JWTAudience)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	// Account creation is an administrative action.
	e.POST("/auth/register", authHandler.Register, authMiddleware, adminOnly)

	// --- Vehicle routes ---
	vehicleHandler := handler.NewVehicleHandler(deps.Vehicles)
	vehicles := e.Group("/vehicles", authMiddleware)
	vehicles.GET("", vehicleHandler.List, anyRole)
	vehicles.GET("/:id", vehicleHandler.Get, anyRole)
	vehicles.POST("", vehicleHandler.Create, adminOnly)
	vehicles.PATCH("/:id", vehicleHandler.Patch, adminOnly)
	vehicles.DELETE("/:id", vehicleHandler.Delete, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
