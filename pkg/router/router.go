package router

import (
	"multiverse-identity/backend/internal/api"
	"multiverse-identity/backend/pkg/config"
	"multiverse-identity/backend/pkg/di"
	"multiverse-identity/backend/pkg/errors"
	"multiverse-identity/backend/pkg/logger"
	"multiverse-identity/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	Config      *config.Config
	rateLimiter *middleware.RateLimiter
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := container.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every later middleware can log with the request ID
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(middleware.Tracing("multiverse-identity"))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	opts := middleware.DefaultRateLimiterOptions()
	opts.Limit = rate.Limit(cfg.Security.RateLimit)
	opts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, opts)
	engine.Use(rateLimiter.Middleware())

	engine.Use(middleware.CORS(cfg.Security.AllowedOrigins))
	engine.Use(middleware.MaxBodySize(cfg.Security.MaxBodySize))

	return &Router{
		Engine:      engine,
		Container:   container,
		Logger:      container.Logger,
		Config:      cfg,
		rateLimiter: rateLimiter,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	if r.Config.OpenAPI.SchemaPath != "" {
		r.AddOpenAPIValidation(r.Config.OpenAPI.SchemaPath)
	}

	r.setupHealthRoutes()

	if r.Container.Metrics != nil {
		r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	personaHandler := api.NewPersonaHandler(r.Container.PersonaService, r.Config.Generation.RevealDelay)
	v1 := r.Engine.Group("/api/v1")
	personaHandler.RegisterRoutes(v1)

	r.Engine.GET("/ws/reveal", r.Container.Hub.ServeWs)
}

// Close stops the background work owned by the router
func (r *Router) Close() {
	r.rateLimiter.Stop()
}
