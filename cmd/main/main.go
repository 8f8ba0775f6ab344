package main

import (
	"context"
	"os/signal"
	"syscall"

	"partshop/storefront/internal/config"
	"partshop/storefront/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting storefront...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg.Log)
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	// Run the application
	if err := app.Run(ctx); err != nil {
		log.Errorf("Application exited with error: %v", err)
		return
	}

	log.Info("Application finished successfully")
}

func configureLogging(cfg config.LogConfig) {
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("⚠️ Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
