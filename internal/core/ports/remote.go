package ports

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// Remote is a client connection to a running tool server.
//
//go:generate mockgen -source=remote.go -destination=mocks/mock_remote.go -package=mocks
type Remote interface {
	Dispatcher
	// Tools lists the operations the server exposes.
	Tools(ctx context.Context) ([]domain.Operation, error)
	// CacheStats returns the server cache statistics.
	CacheStats(ctx context.Context) (domain.CacheStats, error)
	// ClearCache drops every entry of the server cache.
	ClearCache(ctx context.Context) error
	// ConfigureCache applies runtime changes to the server cache and returns the resulting stats.
	ConfigureCache(ctx context.Context, update domain.CacheUpdate) (domain.CacheStats, error)
	// Close releases the connection.
	Close() error
}

// RemoteFactory opens client connections for a transport.
type RemoteFactory interface {
	Open(ctx context.Context, cfg domain.ClientConfig) (Remote, error)
}
