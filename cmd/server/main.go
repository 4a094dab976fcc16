package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/logger"
)

// @title Recruitment Portal API
// @version 1.0
// @description Backend for the recruitment portal
// @description
// @description Features:
// @description - Google sign-in with an HttpOnly session cookie
// @description - Verification tokens that bind a form submission to the signed-in email
// @description - Application status lookups from the response spreadsheet
// @description - Optional server-side relay to the Google Form

// @contact.name API Support
// @contact.url https://codeberg.org/recruitportal/server

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @description Session JWT set by /api/v1/verify-google-token

func main() {
	logger.Info("starting recruitportal server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// create server with all dependencies
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // sheet reads and the form relay can be slow
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	srv.StartBackground(ctx)

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// stop background sweepers
	cancel()

	// graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
