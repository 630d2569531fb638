//go:build wireinject
// +build wireinject

package di

import (
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideSupabaseClient,
	ProvideCanvas,
	ProvideLayoutService,
	ProvideAssemblyService,
	ProvidePickOrder,
	ProvideProjectStore,
	ProvideProjectService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
