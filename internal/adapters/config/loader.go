// Package config provides the configuration loader and file watcher for thingsgate.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const maxPort = 65535

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	Getenv func(string) string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Getenv: os.Getenv}
}

// Load reads the configuration. With an empty path it looks for thingsgate.yaml
// from cwd upwards and returns the defaults when there is none.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	if path == "" {
		path = Discover(cwd)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	cfg := domain.DefaultConfig()
	if path != "" {
		if err := l.decodeFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	l.applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func (l *Loader) decodeFile(path string, cfg *domain.Config) error {
	//nolint:gosec // G304: path comes from the user's own flag or discovery
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "failed to read configuration"), "path", path)
		}
		return zerr.Wrap(err, "failed to read configuration")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(err, "failed to parse configuration"), "path", path)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	token := getenv(domain.TokenEnvVar)
	if token == "" {
		return
	}
	if cfg.Server.Auth == "" {
		cfg.Server.Auth = token
	}
	if cfg.Client.Auth == "" {
		cfg.Client.Auth = token
	}
}

// Discover walks from cwd to the filesystem root and returns the first
// thingsgate.yaml found, or "" when there is none.
func Discover(cwd string) string {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate checks both deployment sections of cfg.
func Validate(cfg *domain.Config) error {
	if _, err := domain.ParseTransport(string(cfg.Server.Transport)); err != nil {
		return zerr.With(err, "section", "server")
	}
	if _, err := domain.ParseTransport(string(cfg.Client.Transport)); err != nil {
		return zerr.With(err, "section", "client")
	}
	if err := cfg.Server.Cache.Validate(); err != nil {
		return zerr.With(err, "section", "server.cache")
	}
	if err := cfg.Client.Cache.Validate(); err != nil {
		return zerr.With(err, "section", "client.cache")
	}
	for section, port := range map[string]int{"server": cfg.Server.Port, "client": cfg.Client.Port} {
		if port < 0 || port > maxPort {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidParam, "port out of range"),
				"section", section), "port", port)
		}
	}
	if cfg.Server.Timeout < 0 || cfg.Server.IdleTimeout < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidParam, "timeouts must not be negative"), "section", "server")
	}
	if cfg.Server.RateLimit.PerSecond < 0 || cfg.Server.RateLimit.Burst < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidParam, "rate limit must not be negative"), "section", "server")
	}
	return nil
}
