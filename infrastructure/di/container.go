package di

import (
	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	appservices "github.com/alfhazis/infinite-canvas-creator-sub001/application/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	domainservices "github.com/alfhazis/infinite-canvas-creator-sub001/domain/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Canvas          *aggregates.Canvas
	LayoutService   *domainservices.LayoutService
	AssemblyService *domainservices.AssemblyService
	PickOrder       *domainservices.PickOrder
	ProjectStore    ports.ProjectStore
	ProjectService  *appservices.ProjectService
}

// Close releases container resources
func (c *Container) Close() error {
	if c.Logger != nil {
		return c.Logger.Sync()
	}
	return nil
}
