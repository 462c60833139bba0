// cmd/sandbox/main.go
// Runs the local fake backend so the SDK and CLI can be exercised without the real service

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/config"
	"github.com/sacavia/sacavia-go/internal/sandbox"
)

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if envErr != nil {
		log.Warnw("no .env file found, using environment variables", "error", envErr)
	}

	// 3. Build the sandbox
	sb := sandbox.New(sandbox.Options{
		JWTSecret: cfg.SandboxJWTSecret,
		Logger:    log,
		Seed:      true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.SandboxPort),
		Handler:      sb,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("sandbox backend listening", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
	log.Info("sandbox exited")
}
