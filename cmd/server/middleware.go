package main

import (
	"net/http"
	"time"

	"codeberg.org/recruitportal/server/internal/errors"
	"codeberg.org/recruitportal/server/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swaggo/swag"

	_ "codeberg.org/recruitportal/server/docs" // registers the swagger document
)

const requestIDHeader = "X-Request-ID"

// allows the single configured frontend origin, with cookies
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Retry-After", "X-Cache", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if allowedOrigin == "*" {
		// development only, production config rejects the wildcard
		config.AllowOriginFunc = func(string) bool { return true }
	} else {
		config.AllowOrigins = []string{allowedOrigin}
	}

	return cors.New(config)
}

// tags every request with an id, reusing the caller's when present
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), logger.With("request_id", id)))

		c.Next()
	}
}

// logs one line per request
func RequestLogger() gin.HandlerFunc {
	log := logger.Component("http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// health probes are noisy
		if c.Request.URL.Path == "/health" {
			return
		}

		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}

// serves the registered swagger document
func OpenAPIHandler(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		errors.InternalError(c, "failed to load API document", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
