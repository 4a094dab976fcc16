package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	apierrors "codeberg.org/recruitportal/server/internal/errors"
	"codeberg.org/recruitportal/server/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ThrottleConfig sizes the per client token bucket.
type ThrottleConfig struct {
	// sustained requests per second
	Rate rate.Limit

	// requests allowed in a burst
	Burst int

	// how long an idle client's bucket is kept
	IdleTTL time.Duration
}

// default for the identity exchange: a burst of 10, then one every 6 seconds
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Rate:    rate.Every(6 * time.Second),
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	}
}

// IPThrottle keeps one token bucket per client IP.
type IPThrottle struct {
	config ThrottleConfig

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPThrottle(config ThrottleConfig) *IPThrottle {
	return &IPThrottle{
		config:  config,
		clients: make(map[string]*client),
	}
}

// reports whether key may make a request now; when not, how long to wait
func (t *IPThrottle) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	t.mu.Lock()
	c, ok := t.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(t.config.Rate, t.config.Burst)}
		t.clients[key] = c
	}
	c.lastSeen = now
	t.mu.Unlock()

	reservation := c.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}

	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}

	reservation.CancelAt(now)
	return false, delay
}

// returns a gin middleware that rejects clients over their bucket with 429
func (t *IPThrottle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, wait := t.Allow(ip)
		if !allowed {
			logger.Warn("client throttled", "ip", ip, "path", c.Request.URL.Path)

			apierrors.TooManyRequests(c, "too many sign-in attempts, please slow down", int(math.Ceil(wait.Seconds())))
			c.Abort()
			return
		}

		c.Next()
	}
}

// removes idle buckets until ctx is cancelled
func (t *IPThrottle) StartCleaner(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.cleanup(time.Now())
			}
		}
	}()
}

func (t *IPThrottle) cleanup(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, c := range t.clients {
		if now.Sub(c.lastSeen) > t.config.IdleTTL {
			delete(t.clients, key)
		}
	}
}

func (t *IPThrottle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.clients)
}
