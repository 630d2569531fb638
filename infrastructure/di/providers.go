package di

import (
	"fmt"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	appservices "github.com/alfhazis/infinite-canvas-creator-sub001/application/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	domainservices "github.com/alfhazis/infinite-canvas-creator-sub001/domain/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/config"
	supastore "github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/persistence/supabase"

	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideSupabaseClient creates a Supabase client from configuration
func ProvideSupabaseClient(cfg *config.Config) (*supa.Client, error) {
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}

// ProvideCanvas creates the in-memory canvas aggregate
func ProvideCanvas() *aggregates.Canvas {
	return aggregates.NewCanvas()
}

// ProvideLayoutService creates a layout service tuned from configuration
func ProvideLayoutService(cfg *config.Config) *domainservices.LayoutService {
	return domainservices.NewTunedLayoutService(cfg.LayoutPadding, cfg.LayoutStep)
}

// ProvideAssemblyService creates an assembly service
func ProvideAssemblyService() *domainservices.AssemblyService {
	return domainservices.NewAssemblyService()
}

// ProvidePickOrder creates the pick order tracker
func ProvidePickOrder() *domainservices.PickOrder {
	return domainservices.NewPickOrder()
}

// ProvideProjectStore creates the Supabase-backed project store
func ProvideProjectStore(client *supa.Client, logger *zap.Logger) ports.ProjectStore {
	return supastore.NewProjectStore(client, logger)
}

// ProvideProjectService creates the project lifecycle service
func ProvideProjectService(store ports.ProjectStore, canvas *aggregates.Canvas, logger *zap.Logger) *appservices.ProjectService {
	return appservices.NewProjectService(store, canvas, logger)
}
