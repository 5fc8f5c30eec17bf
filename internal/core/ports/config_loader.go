package ports

import "go.trai.ch/thingsgate/internal/core/domain"

// ConfigLoader defines the interface for loading the gateway configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration. An empty path discovers thingsgate.yaml from cwd upwards
	// and falls back to defaults when none exists.
	Load(cwd, path string) (*domain.Config, error)
}
