package ports

import (
	"context"
	"net/url"
)

// UpstreamRequest describes one REST call to the home-automation API.
type UpstreamRequest struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Token     string
}

// Upstream performs REST calls against the home-automation API.
//
//go:generate mockgen -source=upstream.go -destination=mocks/mock_upstream.go -package=mocks
type Upstream interface {
	// Do sends the request and returns the decoded JSON response.
	Do(ctx context.Context, req UpstreamRequest) (any, error)
}
