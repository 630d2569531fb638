package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/config"
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/di"
	"github.com/alfhazis/infinite-canvas-creator-sub001/interfaces/http/rest"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Hot-reload the YAML overlay when present
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		watcher, err := config.NewWatcher(cfg, path, container.Logger)
		if err != nil {
			container.Logger.Warn("config watcher unavailable", zap.Error(err))
		} else {
			watcher.OnChange(func(next *config.Config) {
				container.Logger.Info("configuration changed",
					zap.Float64("layoutPadding", next.LayoutPadding),
					zap.Float64("layoutStep", next.LayoutStep),
					zap.String("logLevel", next.LogLevel),
				)
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	// Create router
	router := rest.NewRouter(container)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown: persist the active project before exiting
	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := container.ProjectService.SaveActive(shutdownCtx); err != nil {
		container.Logger.Error("Final save failed", zap.Error(err))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Close(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
