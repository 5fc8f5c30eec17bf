// Package client is the calling side of thingsgate: a remote tool service
// behind a client-local cache that invalidates precisely.
package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/thingsgate/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Client calls tools on a remote server through a local cache.
type Client struct {
	remote ports.Remote
	engine *cache.Engine
	auth   string
}

// New creates a Client over remote. auth, when set, is added to every call
// that carries no auth parameter of its own.
func New(remote ports.Remote, cfg domain.CacheConfig, auth string, opts ...cache.Option) (*Client, error) {
	if remote == nil {
		return nil, zerr.New("remote cannot be nil")
	}
	engine, err := cache.New(cfg, domain.DefaultCatalog(), remote, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{remote: remote, engine: engine, auth: auth}, nil
}

// Call runs op with params. list_tools is answered by the server's catalog.
func (c *Client) Call(ctx context.Context, op string, params domain.Params) (any, error) {
	if op == domain.OpListTools {
		return c.Tools(ctx)
	}
	return c.engine.Execute(ctx, op, c.withAuth(params))
}

func (c *Client) withAuth(params domain.Params) domain.Params {
	if c.auth == "" || params.Has(domain.AuthParam) {
		if params == nil {
			return domain.Params{}
		}
		return params
	}
	out := params.Clone()
	out[domain.AuthParam] = c.auth
	return out
}

// Tools lists the operations exposed by the server.
func (c *Client) Tools(ctx context.Context) ([]domain.Operation, error) {
	return c.remote.Tools(ctx)
}

// CacheStats returns the statistics of the local cache.
func (c *Client) CacheStats() domain.CacheStats {
	return c.engine.Stats()
}

// ClearCache empties the local cache and resets its counters.
func (c *Client) ClearCache() {
	c.engine.Clear()
}

// SetCacheEnabled toggles the local cache.
func (c *Client) SetCacheEnabled(enabled bool) {
	c.engine.SetEnabled(enabled)
}

// SetCacheTTL changes the local entry lifetime.
func (c *Client) SetCacheTTL(seconds int) error {
	return c.engine.SetTTL(seconds)
}

// Server returns the remote connection for server-side cache administration.
func (c *Client) Server() ports.Remote {
	return c.remote
}

// Close drops the local cache and closes the connection.
func (c *Client) Close() error {
	c.engine.Close()
	return c.remote.Close()
}

// args builds params from key, value pairs, leaving out nil values and empty strings.
func args(kv ...any) domain.Params {
	p := domain.Params{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		switch v := kv[i+1].(type) {
		case nil:
		case string:
			if v != "" {
				p[key] = v
			}
		default:
			p[key] = v
		}
	}
	return p
}
