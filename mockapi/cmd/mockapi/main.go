package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/config"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/generator"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/handlers"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	seed := flag.Int64("seed", 0, "deterministic generator seed (0 = derive from clock)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("mockapi"))
	logging.SetDefault(logger)

	slog.Info("Starting mock event API",
		slog.Int("port", cfg.Server.Port),
		slog.Int("max_batch_size", cfg.Generation.MaxBatchSize),
		slog.Float64("default_fault_rate", cfg.Generation.DefaultFaultRate),
		slog.String("log_level", cfg.Logging.Level),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}
	if cfg.Auth.APIKey == "" {
		log.Println("API key not configured - authentication disabled")
	}

	gen := generator.New(*seed)
	handler := handlers.NewEventsHandler(gen, cfg.Generation.MaxBatchSize, cfg.Generation.DefaultFaultRate, logger)
	router := server.NewRouter(handler, cfg.Auth.APIKey)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Mock event API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
