// Package app implements the application layer for thingsgate.
package app

import (
	"encoding/json"
	"io"
	"os"

	"go.trai.ch/thingsgate/internal/adapters/detector"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	tracer       ports.Tracer
	remotes      ports.RemoteFactory
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	tracer ports.Tracer,
	remotes ports.RemoteFactory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		tracer:       tracer,
		remotes:      remotes,
		getwd:        os.Getwd,
	}
}

// WithGetwd overrides how the working directory is resolved.
func (a *App) WithGetwd(getwd func() (string, error)) *App {
	a.getwd = getwd
	return a
}

type formatSetter interface {
	SetJSON(enable bool)
}

// ConfigureLogging switches the logger between pretty and JSON output.
// format is one of auto, pretty or json.
func (a *App) ConfigureLogging(format string) error {
	mode, err := detector.ResolveFormat(detector.DetectEnvironment(), format)
	if err != nil {
		return err
	}
	if s, ok := a.logger.(formatSetter); ok {
		s.SetJSON(mode == detector.FormatJSON)
	}
	return nil
}

// LoadConfig reads the configuration at path, or discovers it from the
// working directory when path is empty.
func (a *App) LoadConfig(path string) (*domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd, path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func parseParams(raw string) (domain.Params, error) {
	if raw == "" {
		return domain.Params{}, nil
	}
	var params domain.Params
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidParam, "params must be a JSON object"), "params", raw)
	}
	if params == nil {
		params = domain.Params{}
	}
	return params, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return zerr.Wrap(err, "failed to encode result")
	}
	return nil
}
