package main

import (
	"context"
	"fmt"

	"codeberg.org/recruitportal/server/internal/application"
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/cache"
	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/logger"
	"codeberg.org/recruitportal/server/internal/ratelimit"
	"codeberg.org/recruitportal/server/internal/sheets"
	"codeberg.org/recruitportal/server/internal/status"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/redis/go-redis/v9"
)

// creates and configures all service clients; rdb may be nil
func InitializeServices(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*Services, error) {
	sessions, err := auth.NewSessionCodec(cfg.JWTSecret, auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session codec: %w", err)
	}

	identity, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to create google verifier: %w", err)
	}

	tokens, err := verification.NewCodec(cfg.VerificationSecret,
		verification.WithWindow(cfg.Token.WindowMinutes),
		verification.WithLookahead(cfg.Token.LookaheadMinutes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	services := &Services{
		Sessions: sessions,
		Identity: identity,
		Tokens:   tokens,
		Throttle: ratelimit.NewIPThrottle(ratelimit.DefaultThrottleConfig()),
	}

	var (
		quota       *ratelimit.Quota
		statusCache cache.Cache
	)

	if rdb != nil {
		quota, err = ratelimit.NewRedisQuota(rdb, ratelimit.StatusLimit, ratelimit.StatusWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to create status quota: %w", err)
		}
		statusCache = cache.NewRedisCache(rdb)
	} else {
		quota = ratelimit.NewMemoryQuota(ratelimit.StatusLimit, ratelimit.StatusWindow)
		services.memoryCache = cache.NewMemoryCache()
		statusCache = services.memoryCache
	}

	services.Status = status.NewService(sheetsClient, cfg.Sheets.MainSheetName, quota, statusCache)

	if cfg.FormFieldsFile != "" {
		fields, err := application.LoadFieldMap(cfg.FormFieldsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load form field map: %w", err)
		}

		services.Relay = application.NewRelay(fields)
		logger.Info("application relay enabled", "teams", len(application.Teams()))
	}

	return services, nil
}
