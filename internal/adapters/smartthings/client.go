// Package smartthings implements the upstream dispatcher against the SmartThings REST API.
package smartthings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

// Client performs rate-limited REST calls against the SmartThings API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  ports.Logger
}

var _ ports.Upstream = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithRateLimit sets the sustained request rate and burst. A non-positive
// rate disables limiting.
func WithRateLimit(limit domain.RateLimit) ClientOption {
	return func(cl *Client) {
		if limit.PerSecond <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := limit.Burst
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(limit.PerSecond), burst)
	}
}

// WithClientLogger sets the logger used for request tracing.
func WithClientLogger(l ports.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = domain.DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(domain.DefaultRateLimit), domain.DefaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes the JSON response. Error statuses become a
// RemoteCallError carrying the API's message.
func (c *Client) Do(ctx context.Context, req ports.UpstreamRequest) (any, error) {
	if req.Token == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingToken, "request has no token"), "operation", req.Operation)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, zerr.Wrap(err, "rate limiter wait failed")
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Info(fmt.Sprintf("%s %s", req.Method, req.Path))
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, domain.NewRemoteCallError(req.Operation, 0, requestFailed(err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody(resp.StatusCode)))
	if err != nil {
		return nil, domain.NewRemoteCallError(req.Operation, resp.StatusCode, requestFailed(err.Error()))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, domain.NewRemoteCallError(req.Operation, resp.StatusCode,
			requestFailed(errorMessage(resp.StatusCode, body)))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, domain.NewRemoteCallError(req.Operation, resp.StatusCode,
			requestFailed("invalid JSON response: "+err.Error()))
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req ports.UpstreamRequest) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidParam, "request body is not JSON-encodable"),
				"operation", req.Operation)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func maxResponseBody(status int) int64 {
	if status >= http.StatusBadRequest {
		return maxErrorBody
	}
	return 1<<63 - 1
}

func requestFailed(msg string) string {
	return "SmartThings API request failed: " + msg
}

// errorMessage prefers the API's JSON "message" (top level or nested under
// "error") and falls back to the status line.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
