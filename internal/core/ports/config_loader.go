package ports

import "go.trai.ch/stash/internal/core/domain"

// ConfigLoader defines the interface for loading the project
// configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory and
	// returns the project with its cache settings and operations.
	Load(cwd string) (*domain.Project, error)
}
