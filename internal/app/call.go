package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/thingsgate/internal/client"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/engine/cache"
	"go.trai.ch/thingsgate/internal/ui/view"
	"go.trai.ch/zerr"
)

const maxSessionLine = 1 << 20

// CallOptions configuration for the Call method.
type CallOptions struct {
	Action  string
	Params  string
	Pretty  bool
	NoCache bool
}

// Call runs a single tool call against the server and writes its JSON result to out.
func (a *App) Call(ctx context.Context, cfg domain.ClientConfig, opts CallOptions, out io.Writer) error {
	if opts.Action == "" {
		return domain.ErrMissingAction
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	c, err := a.connect(ctx, cfg, opts.NoCache, cache.WithHitLog())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	result, err := c.Call(ctx, opts.Action, params)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "tool call failed"), "action", opts.Action)
	}
	return writeJSON(out, result, opts.Pretty)
}

// Session reads "<action> [json params]" lines from in and runs each against a
// single client, so the client cache lives for the whole session.
// The directives :stats, :clear and :quit inspect and control that cache.
func (a *App) Session(ctx context.Context, cfg domain.ClientConfig, in io.Reader, out io.Writer) error {
	c, err := a.connect(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	v := view.New(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSessionLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line {
		case ":quit":
			return nil
		case ":stats":
			_, _ = fmt.Fprint(out, v.Stats("Client cache", c.CacheStats()))
			continue
		case ":clear":
			c.ClearCache()
			_, _ = fmt.Fprintln(out, "Client cache cleared")
			continue
		}

		action, raw, _ := strings.Cut(line, " ")
		params, err := parseParams(strings.TrimSpace(raw))
		if err != nil {
			a.logger.Error(err)
			continue
		}

		before := c.CacheStats().Hits
		result, err := c.Call(ctx, action, params)
		if err != nil {
			a.logger.Error(zerr.With(zerr.Wrap(err, "tool call failed"), "action", action))
			continue
		}
		if domain.DefaultCatalog().IsCacheable(action) {
			_, _ = fmt.Fprintln(out, v.Result(action, c.CacheStats().Hits > before))
		}
		if err := writeJSON(out, result, false); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return zerr.Wrap(err, "failed to read session input")
	}
	return nil
}

// Tools writes the local operation catalog to out.
func (a *App) Tools(out io.Writer) error {
	_, err := fmt.Fprint(out, view.New(out).Tools(domain.DefaultCatalog().Operations()))
	return err
}

// CacheStats writes the server cache statistics to out.
func (a *App) CacheStats(ctx context.Context, cfg domain.ClientConfig, out io.Writer) error {
	remote, err := a.remotes.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	stats, err := remote.CacheStats(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to fetch cache statistics")
	}
	_, err = fmt.Fprint(out, view.New(out).Stats("Server cache", stats))
	return err
}

// ClearCache empties the server cache.
func (a *App) ClearCache(ctx context.Context, cfg domain.ClientConfig, out io.Writer) error {
	remote, err := a.remotes.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	if err := remote.ClearCache(ctx); err != nil {
		return zerr.Wrap(err, "failed to clear cache")
	}
	a.logger.Info("Server cache cleared")

	stats, err := remote.CacheStats(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to fetch cache statistics")
	}
	_, err = fmt.Fprint(out, view.New(out).Stats("Server cache", stats))
	return err
}

// ConfigureCache applies update to the server cache and writes the resulting statistics.
func (a *App) ConfigureCache(
	ctx context.Context,
	cfg domain.ClientConfig,
	update domain.CacheUpdate,
	out io.Writer,
) error {
	remote, err := a.remotes.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	stats, err := remote.ConfigureCache(ctx, update)
	if err != nil {
		return zerr.Wrap(err, "failed to configure cache")
	}
	_, err = fmt.Fprint(out, view.New(out).Stats("Server cache", stats))
	return err
}

func (a *App) connect(
	ctx context.Context,
	cfg domain.ClientConfig,
	noCache bool,
	opts ...cache.Option,
) (*client.Client, error) {
	cacheCfg := cfg.Cache
	if noCache {
		cacheCfg.Enabled = false
	}

	remote, err := a.remotes.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts = append([]cache.Option{cache.WithLogger(a.logger), cache.WithTracer(a.tracer)}, opts...)
	c, err := client.New(remote, cacheCfg, cfg.Auth, opts...)
	if err != nil {
		_ = remote.Close()
		return nil, zerr.Wrap(err, "failed to create client")
	}
	return c, nil
}
