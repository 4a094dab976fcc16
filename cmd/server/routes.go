package main

import (
	"net/http"

	"codeberg.org/recruitportal/server/api/rest/applications"
	"codeberg.org/recruitportal/server/api/rest/health"
	"codeberg.org/recruitportal/server/api/rest/session"
	"codeberg.org/recruitportal/server/api/rest/status"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	cfg := server.config
	svc := server.services

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORSMiddleware(cfg.AllowedOrigin))

	// preflights the CORS middleware did not already answer
	router.OPTIONS("/*any", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)
		v1.GET("/openapi.json", OpenAPIHandler)

		session.RegisterRoutes(v1, session.Dependencies{
			Sessions:      svc.Sessions,
			Identity:      svc.Identity,
			Tokens:        svc.Tokens,
			Throttle:      svc.Throttle,
			CookieName:    cfg.SessionCookieName,
			RedirectLogin: cfg.RedirectLoginEnabled(),
			FrontendURL:   cfg.FrontendURL,
		})

		status.RegisterRoutes(v1, svc.Status, svc.Sessions, cfg.SessionCookieName)

		if svc.Relay != nil {
			applications.RegisterRoutes(v1, svc.Relay, svc.Tokens, svc.Sessions, cfg.SessionCookieName)
		}
	}
}
