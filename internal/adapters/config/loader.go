// Package config provides the configuration loader for stash.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file stash looks for in the
// working directory.
const DefaultFilename = "stash.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory. The
// directory itself becomes the project root. An absolute Filename is
// used as is.
func (l *FileConfigLoader) Load(cwd string) (*domain.Project, error) {
	path := l.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	project, err := Load(path)
	if err != nil {
		return nil, err
	}
	project.Root = cwd
	return project, nil
}

// Load reads a configuration file from the given path and returns a
// domain.Project with defaults applied. The project root is left empty
// for the caller to fill in.
func Load(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var stashfile Stashfile
	if err := yaml.Unmarshal(data, &stashfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	settings, err := cacheSettings(stashfile.Cache)
	if err != nil {
		return nil, err
	}

	operations := make(map[string]domain.OperationSpec, len(stashfile.Operations))
	for name, dto := range stashfile.Operations {
		if name == "" {
			return nil, zerr.New("operation name must not be empty")
		}
		if len(dto.Cmd) == 0 {
			return nil, zerr.With(zerr.New("operation has no command"), "operation", name)
		}
		operations[name] = domain.OperationSpec{
			Name:   name,
			Cmd:    dto.Cmd,
			Params: dto.Params,
		}
	}

	return &domain.Project{
		Cache:      settings,
		Operations: operations,
	}, nil
}

// cacheSettings merges the cache section over the defaults.
func cacheSettings(dto CacheDTO) (domain.CacheSettings, error) {
	settings := domain.DefaultCacheSettings()

	if dto.Dir != "" {
		settings.Dir = dto.Dir
	}
	if dto.MaxAgeDays > 0 {
		settings.MaxAgeDays = dto.MaxAgeDays
	}
	if dto.Differential != nil {
		settings.Differential = *dto.Differential
	}

	if dto.MemoryTTL != "" {
		ttl, err := time.ParseDuration(dto.MemoryTTL)
		if err != nil {
			return settings, zerr.With(zerr.Wrap(err, "invalid memoryTTL"), "value", dto.MemoryTTL)
		}
		settings.MemoryTTL = ttl
	}
	if dto.DiskTTL != "" {
		ttl, err := time.ParseDuration(dto.DiskTTL)
		if err != nil {
			return settings, zerr.With(zerr.Wrap(err, "invalid diskTTL"), "value", dto.DiskTTL)
		}
		settings.DiskTTL = ttl
	}

	return settings, nil
}
