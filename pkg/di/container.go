package di

import (
	"context"
	"fmt"
	"time"

	"multiverse-identity/backend/internal/cache"
	"multiverse-identity/backend/internal/persona"
	"multiverse-identity/backend/internal/repository"
	"multiverse-identity/backend/internal/service"
	"multiverse-identity/backend/internal/ws"
	"multiverse-identity/backend/pkg/config"
	"multiverse-identity/backend/pkg/health"
	"multiverse-identity/backend/pkg/logger"
	"multiverse-identity/backend/pkg/resilience"
	"multiverse-identity/backend/shared/observability"
	"multiverse-identity/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config         *config.Config
	DB             *gorm.DB
	Logger         *logger.Logger
	Redis          *redis.RedisClient
	RunRepository  repository.RunRepository
	RunCache       cache.RunCache
	Breaker        *resilience.CircuitBreaker
	Metrics        *observability.Metrics
	PersonaService *service.PersonaService
	Health         *health.Checker
	Hub            *ws.Hub

	closers []func() error
}

// Options overrides parts of the wiring
type Options struct {
	// DB is used instead of opening one from the configuration
	DB *gorm.DB
	// Generator replaces the default random persona generator
	Generator *persona.Generator
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	if cfg.Features.EnableHistory {
		if err := c.setupDatabase(ctx, opts.DB); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.setupCache()

	if cfg.Features.EnableMetrics {
		metrics, err := observability.SetupMetrics("multiverse-identity", nil)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Metrics = metrics
		c.closers = append(c.closers, func() error { return metrics.Shutdown(context.Background()) })
	}

	c.Breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("run-repository"), log)

	deps := service.Deps{
		Generator: opts.Generator,
		Cache:     c.RunCache,
		Breaker:   c.Breaker,
		Logger:    log,
	}
	if c.RunRepository != nil {
		deps.Repo = c.RunRepository
	}
	if c.Metrics != nil {
		deps.Metrics = c.Metrics
	}
	c.PersonaService = service.NewPersonaService(deps, service.Limits{
		MaxNameLength:   cfg.Generation.MaxNameLength,
		MaxTraitsLength: cfg.Generation.MaxTraitsLength,
		HistoryLimit:    cfg.Generation.HistoryLimit,
	})

	c.Hub = ws.NewHub(c.PersonaService, ws.HubConfig{
		RevealDelay:    cfg.Generation.RevealDelay,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	}, log)

	c.setupHealth()

	return c, nil
}

func (c *Container) setupDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		var err error
		db, err = config.NewDB(ctx, c.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err == nil {
			c.closers = append(c.closers, sqlDB.Close)
		}
	}

	repo := repository.NewGormRunRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	c.DB = db
	c.RunRepository = repo
	return nil
}

func (c *Container) setupCache() {
	if c.Config.Redis.Enabled {
		c.Redis = redis.NewRedisClient(redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		c.RunCache = cache.NewRedisRunCache(c.Redis, c.Config.Cache.TTL)
		c.closers = append(c.closers, c.Redis.Close)
		c.Logger.Info("Run cache backed by redis", "addr", c.Config.Redis.Addr)
		return
	}

	memory := cache.NewMemoryRunCache(c.Config.Cache.TTL, c.Config.Cache.PurgeWindow, c.Config.Cache.MaxSize)
	c.RunCache = memory
	c.closers = append(c.closers, func() error { memory.Close(); return nil })
}

func (c *Container) setupHealth() {
	c.Health = health.NewChecker(c.Logger, 30*time.Second)

	if c.DB != nil {
		c.Health.RegisterDatabaseCheck(func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if c.Redis != nil {
		c.Health.RegisterRedisCheck(c.Redis.Ping)
	}
	c.Health.RegisterCheck("websocket", func(context.Context) (health.Status, string, error) {
		return health.StatusUp, fmt.Sprintf("%d active reveal connections", c.Hub.ActiveConnections()), nil
	})
}

// Start launches the background loops of the container
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	c.Health.Start(ctx)
}

// Close releases everything the container opened, last opened first
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
