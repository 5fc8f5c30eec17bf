package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"go.trai.ch/thingsgate/internal/adapters/config"
	"go.trai.ch/thingsgate/internal/adapters/httpapi"
	"go.trai.ch/thingsgate/internal/adapters/rpc"
	"go.trai.ch/thingsgate/internal/adapters/smartthings"
	"go.trai.ch/thingsgate/internal/adapters/stdio"
	"go.trai.ch/thingsgate/internal/adapters/structure"
	"go.trai.ch/thingsgate/internal/adapters/telemetry"
	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/engine/cache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	// Watch reloads the cache section when the configuration file changes.
	Watch bool
	// Trace logs one line per finished span.
	Trace bool
	// In and Out carry the stdio transport. They default to stdin and stdout.
	In  io.Reader
	Out io.Writer
	// Listener replaces listening on the configured address.
	Listener net.Listener
	// Overrides re-applies command-line settings to every reloaded configuration.
	Overrides func(*domain.ServerConfig) error
}

type serveFunc func(ctx context.Context) error

// Serve runs the tool server described by cfg.Server until ctx is done or the
// idle timeout expires.
func (a *App) Serve(ctx context.Context, cfg *domain.Config, opts ServeOptions) error {
	srv := cfg.Server

	if opts.Trace {
		shutdown := telemetry.Install(a.logger)
		defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()
	}

	catalog := domain.DefaultCatalog()
	upstream := smartthings.NewClient(srv.BaseURL, srv.Timeout,
		smartthings.WithRateLimit(srv.RateLimit),
		smartthings.WithClientLogger(a.logger),
	)
	dispatcher := smartthings.NewDispatcher(upstream, structure.New(a.logger), catalog, srv.Auth)

	engine, err := cache.New(srv.Cache, catalog, dispatcher,
		cache.WithLogger(a.logger),
		cache.WithTracer(a.tracer),
	)
	if err != nil {
		return zerr.Wrap(err, "failed to create cache engine")
	}
	defer engine.Close()

	lifecycle := transport.NewLifecycle(srv.IdleTimeout)
	defer lifecycle.Stop()
	serve, err := a.server(srv, engine, lifecycle, opts)
	if err != nil {
		return err
	}

	var watcher *config.Watcher
	if opts.Watch {
		if watcher, err = a.watcher(cfg, engine, opts.Overrides); err != nil {
			return err
		}
	}

	a.logCache("Server", srv.Cache)
	if srv.IdleTimeout > 0 {
		a.logger.Info(fmt.Sprintf("Idle timeout: %s", srv.IdleTimeout))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := serve(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}

func (a *App) server(
	srv domain.ServerConfig,
	engine *cache.Engine,
	lifecycle *transport.Lifecycle,
	opts ServeOptions,
) (serveFunc, error) {
	switch srv.Transport {
	case domain.TransportGRPC:
		s := rpc.NewServer(engine, lifecycle, a.logger)
		if opts.Listener != nil {
			return func(ctx context.Context) error { return s.Serve(ctx, opts.Listener) }, nil
		}
		return func(ctx context.Context) error { return s.ListenAndServe(ctx, srv.Addr()) }, nil
	case domain.TransportHTTP:
		s := httpapi.NewServer(engine, lifecycle, a.logger)
		if opts.Listener != nil {
			return func(ctx context.Context) error { return s.Serve(ctx, opts.Listener) }, nil
		}
		return func(ctx context.Context) error { return s.ListenAndServe(ctx, srv.Addr()) }, nil
	case domain.TransportStdio:
		s := stdio.NewServer(engine, lifecycle, a.logger)
		in, out := opts.In, opts.Out
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return func(ctx context.Context) error { return s.Serve(ctx, in, out) }, nil
	default:
		_, err := domain.ParseTransport(string(srv.Transport))
		return nil, err
	}
}

// watcher returns nil when there is no configuration file to watch.
func (a *App) watcher(
	cfg *domain.Config,
	engine *cache.Engine,
	overrides func(*domain.ServerConfig) error,
) (*config.Watcher, error) {
	if cfg.Path == "" {
		a.logger.Warn("no configuration file found, --watch has nothing to watch")
		return nil, nil
	}
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	return config.NewWatcher(a.configLoader, a.logger, cwd, cfg.Path, func(next *domain.Config) {
		srv := next.Server
		if overrides != nil {
			if err := overrides(&srv); err != nil {
				a.logger.Error(zerr.Wrap(err, "failed to apply command-line overrides"))
				return
			}
		}
		if err := engine.Configure(srv.Cache); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to apply cache configuration"))
			return
		}
		a.logCache("Reloaded", srv.Cache)
	}), nil
}

func (a *App) logCache(prefix string, c domain.CacheConfig) {
	if !c.Enabled {
		a.logger.Info(prefix + " cache disabled")
		return
	}
	a.logger.Info(fmt.Sprintf("%s cache: ttl=%ds max=%d invalidation=%s",
		prefix, c.TTLSeconds, c.MaxSize, c.Invalidation))
}
