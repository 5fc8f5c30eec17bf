package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Client implements ports.Remote against a Server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.Remote = (*Client)(nil)

// NewClient creates a client for the server at baseURL, e.g. http://localhost:8000.
// A nil httpClient uses a client with the default request timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: domain.DefaultRequestTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Dispatch implements ports.Dispatcher by calling the remote tool service.
func (c *Client) Dispatch(ctx context.Context, op string, params domain.Params) (any, error) {
	if params == nil {
		params = domain.Params{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrParamsEncoding, err.Error()), "operation", op)
	}
	var resp callResponse
	if err := c.do(ctx, op, http.MethodPost, "/v1/tools/"+url.PathEscape(op), body, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Tools implements ports.Remote.
func (c *Client) Tools(ctx context.Context) ([]domain.Operation, error) {
	var resp toolsResponse
	if err := c.do(ctx, domain.OpListTools, http.MethodGet, "/v1/tools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CacheStats implements ports.Remote.
func (c *Client) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats
	err := c.do(ctx, "cache_stats", http.MethodGet, "/v1/cache/stats", nil, &stats)
	return stats, err
}

// ClearCache implements ports.Remote.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, "clear_cache", http.MethodPost, "/v1/cache/clear", nil, nil)
}

// ConfigureCache implements ports.Remote.
func (c *Client) ConfigureCache(ctx context.Context, update domain.CacheUpdate) (domain.CacheStats, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return domain.CacheStats{}, zerr.Wrap(err, "failed to encode cache update")
	}
	var stats domain.CacheStats
	err = c.do(ctx, "configure_cache", http.MethodPatch, "/v1/cache", body, &stats)
	return stats, err
}

// Close implements ports.Remote.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return zerr.With(zerr.Wrap(domain.ErrServerUnreachable, err.Error()), "url", c.baseURL)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zerr.Wrap(err, "failed to read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = resp.Status
		}
		return transport.RemoteError(op, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(err, "invalid response from tool server"), "operation", op)
	}
	return nil
}
