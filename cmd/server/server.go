package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/cache"
	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// how often idle per-IP limiters are dropped
	throttleCleanupInterval = 5 * time.Minute

	// how often expired in-memory status entries are swept
	cacheCleanupInterval = time.Minute
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	var rdb *redis.Client

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rdb = client
		logger.Info("using redis for rate limits and status cache")
	} else {
		logger.Info("REDIS_URL not set, rate limits and status cache are process local")
	}

	services, err := InitializeServices(ctx, cfg, rdb)
	if err != nil {
		if rdb != nil {
			rdb.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.RedirectLoginEnabled() {
		if err := auth.InitializeProviders(cfg); err != nil {
			if rdb != nil {
				rdb.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
			}
			return nil, fmt.Errorf("failed to initialize OAuth providers: %w", err)
		}
		logger.Info("google redirect login enabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		config:   cfg,
		services: services,
		router:   router,
		redis:    rdb,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// starts background sweepers; they stop when ctx is cancelled
func (s *Server) StartBackground(ctx context.Context) {
	s.services.Throttle.StartCleaner(ctx, throttleCleanupInterval)

	if s.services.memoryCache != nil {
		s.services.memoryCache.StartCleaner(ctx, cacheCleanupInterval)
	}
}

// releases external connections
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}
