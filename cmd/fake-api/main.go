// Command fake-api serves the in-memory ratings API with demo data, for
// trying the CLI without a backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/internal/apitest"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (optional)
	_ = godotenv.Load()

	logLevel := logger.INFO
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logLevel = logger.ParseLevel(level)
	}
	logger.Init(logLevel, os.Getenv("LOG_FORMAT") == "json", os.Stdout)
	log := logger.GetLogger().WithContext("component", "fake_api")

	gin.SetMode(gin.ReleaseMode)
	api := apitest.NewUnstarted()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		api.SetSecret(secret)
	} else {
		log.Warn("using_default_jwt_secret", "message", "Set JWT_SECRET to share tokens across restarts")
	}
	api.SeedDemo()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting_fake_api", "port", port, "demo_user", "demo@example.edu")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed_to_start_fake_api", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("fake_api_shutdown_failed", logger.Err(err))
	}
	log.Info("fake_api_stopped")
}
