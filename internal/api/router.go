package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/apoclyps/cr8s/internal/api/handler"
	"github.com/apoclyps/cr8s/internal/api/middleware"
	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/service"
	"github.com/apoclyps/cr8s/internal/infrastructure/config"
	"github.com/apoclyps/cr8s/internal/infrastructure/db/postgres"
	cacheredis "github.com/apoclyps/cr8s/internal/infrastructure/db/redis"
	"github.com/apoclyps/cr8s/internal/pkg/password"
)

// loginRatePerSecond bounds credential-guessing attempts per client IP.
const loginRatePerSecond = 5

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(pool *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("cr8s"))

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(pool)
	rustaceanRepo := postgres.NewRustaceanRepository(pool)
	crateRepo := postgres.NewCrateRepository(pool)
	sessionStore := cacheredis.NewSessionStore(rdb)
	hasher := password.NewHasher(cfg.HashParams())

	authService := service.NewAuthService(userRepo, sessionStore, hasher, cfg.SessionTTL, log)
	authHandler := handler.NewAuthHandler(authService)
	rustaceanHandler := handler.NewRustaceanHandler(rustaceanRepo)
	crateHandler := handler.NewCrateHandler(crateRepo)

	authenticated := middleware.Authenticate(authService)
	editorOrAbove := middleware.RequireRole(userRepo, domain.RoleAdmin, domain.RoleEditor)

	// --- Auth routes ---
	loginLimiter := echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(loginRatePerSecond)))
	e.POST("/login", authHandler.Login, loginLimiter)
	e.GET("/me", authHandler.Me, authenticated)

	// --- Rustaceans: every operation requires editor-or-above ---
	rustaceans := e.Group("/rustaceans", authenticated, editorOrAbove)
	rustaceans.GET("", rustaceanHandler.List)
	rustaceans.GET("/:id", rustaceanHandler.View)
	rustaceans.POST("", rustaceanHandler.Create)
	rustaceans.PUT("/:id", rustaceanHandler.Update)
	rustaceans.DELETE("/:id", rustaceanHandler.Delete)

	// --- Crates: reads need a session, mutations need editor-or-above ---
	crates := e.Group("/crates", authenticated)
	crates.GET("", crateHandler.List)
	crates.GET("/:id", crateHandler.View)
	crates.POST("", crateHandler.Create, editorOrAbove)
	crates.PUT("/:id", crateHandler.Update, editorOrAbove)
	crates.DELETE("/:id", crateHandler.Delete, editorOrAbove)

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(pool, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
