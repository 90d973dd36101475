package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"go-ai-cache/internal/aiclient"
	"go-ai-cache/internal/cache/l1"
	"go-ai-cache/internal/cache/l2"
	"go-ai-cache/internal/cache/multi"
	"go-ai-cache/internal/cache/noop"
	"go-ai-cache/internal/config"
	"go-ai-cache/internal/httpserver"
	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/resilience"
	"go-ai-cache/internal/service"
)

// CompositionRoot holds all application dependencies and provides a centralized
// place for dependency injection and service initialization.
type CompositionRoot struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger

	// Cache components
	Store interfaces.Store

	// Services
	Retrier    *resilience.Retrier
	AIClient   *aiclient.Client
	Service    *service.Service
	HTTPServer *httpserver.Server
}

// NewCompositionRoot creates and initializes all application dependencies.
//
// Initialization order:
// 1. Logger (needed by all other components)
// 2. Configuration (defines how components should be configured)
// 3. Cache store (memory, redis, multi-tier, or noop)
// 4. Retrier and AI client
// 5. Generation service
// 6. HTTP server (uses all above components)
func NewCompositionRoot() (*CompositionRoot, error) {
	root := &CompositionRoot{}

	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := root.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := root.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	root.initServices()
	root.initHTTPServer()

	return root, nil
}

// initLogger initializes the application logger
func (r *CompositionRoot) initLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// loadConfig loads the application configuration
func (r *CompositionRoot) loadConfig() error {
	configPath := os.Getenv("AI_CACHE_CONFIG_FILE")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath, r.Logger)
	if err != nil {
		return err
	}

	r.Config = cfg
	return nil
}

// initStore initializes the cache store for the configured backend.
// A redis backend that cannot be reached at startup degrades to a
// no-op store rather than failing the process.
func (r *CompositionRoot) initStore() error {
	cacheCfg := &r.Config.Cache

	if !cacheCfg.Enabled || cacheCfg.Backend == config.BackendNone {
		r.Store = noop.NewNoOpStore()
		r.Logger.Info("Caching disabled, using no-op store")
		return nil
	}

	switch cacheCfg.Backend {
	case config.BackendMemory:
		store, err := r.newMemoryStore()
		if err != nil {
			return err
		}
		r.Store = store

	case config.BackendRedis:
		r.Store = r.newRedisStore()

	case config.BackendMulti:
		memory, err := r.newMemoryStore()
		if err != nil {
			return err
		}
		r.Store = multi.NewMultiStore([]interfaces.Store{memory, r.newRedisStore()}, r.Logger)
		r.Logger.Info("Multi-tier cache initialized")

	default:
		return fmt.Errorf("unsupported cache backend: %s", cacheCfg.Backend)
	}

	return nil
}

// newMemoryStore initializes the in-process cache tier
func (r *CompositionRoot) newMemoryStore() (interfaces.Store, error) {
	cacheCfg := &r.Config.Cache

	maxRetention := cacheCfg.DefaultTTL() * time.Duration(cacheCfg.StaleFactor)
	for _, seconds := range cacheCfg.OperationTTL {
		retention := time.Duration(seconds*cacheCfg.StaleFactor) * time.Second
		if retention > maxRetention {
			maxRetention = retention
		}
	}

	store, err := l1.NewMemoryStore(cacheCfg.MemorySizeMB, maxRetention, cacheCfg.StaleFactor, r.Logger)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("Memory cache initialized", zap.Int("size_mb", cacheCfg.MemorySizeMB))
	return store, nil
}

// newRedisStore initializes the redis cache tier, falling back to a
// no-op store when the server is unreachable
func (r *CompositionRoot) newRedisStore() interfaces.Store {
	redisCfg := &r.Config.Redis

	client, err := l2.NewRedisClient(redisCfg, r.Logger)
	if err != nil {
		r.Logger.Warn("Failed to connect to redis, falling back to no cache",
			zap.String("redis_url", redisCfg.URL),
			zap.Error(err))
		return noop.NewNoOpStore()
	}

	r.Logger.Info("Redis cache initialized", zap.String("redis_url", redisCfg.URL))
	return l2.NewRedisStore(redisCfg, client, r.Config.Cache.StaleFactor, r.Logger)
}

// initServices initializes application services
func (r *CompositionRoot) initServices() {
	r.Retrier = resilience.NewRetrier(resilience.RetryConfig{
		MaxAttempts: r.Config.Retry.MaxAttempts,
		BaseDelay:   r.Config.Retry.BaseDelay(),
		MaxDelay:    r.Config.Retry.MaxDelay(),
	}, r.Logger)

	r.AIClient = aiclient.NewClient(&r.Config.AI, r.Logger)

	r.Service = service.NewService(r.Store, r.Retrier, r.Config.Cache.DefaultTTL(), r.Logger)
}

// initHTTPServer initializes the HTTP server
func (r *CompositionRoot) initHTTPServer() {
	r.HTTPServer = httpserver.NewServer(r.Service, r.AIClient, &r.Config.Cache, r.Logger)
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	var errs []error

	if r.Logger != nil {
		if err := r.Logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("failed to sync logger: %w", err))
		}
	}

	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache store: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
