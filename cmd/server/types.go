package main

import (
	"codeberg.org/recruitportal/server/internal/application"
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/cache"
	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/ratelimit"
	"codeberg.org/recruitportal/server/internal/status"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	services *Services
	router   *gin.Engine
	redis    *redis.Client // nil when running with process-local stores
}

// holds the domain services the handlers call into
type Services struct {
	Sessions *auth.SessionCodec
	Identity auth.IdentityVerifier
	Tokens   *verification.Codec
	Status   *status.Service
	Relay    *application.Relay // nil unless FORM_FIELDS_FILE is set
	Throttle *ratelimit.IPThrottle

	// only set for the in-memory backends, which need periodic sweeping
	memoryCache *cache.MemoryCache
}
