package ports

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// ToolService is the server-side surface exposed by every transport.
//
//go:generate mockgen -source=tool_service.go -destination=mocks/mock_tool_service.go -package=mocks
type ToolService interface {
	// Execute runs an operation through the cache.
	Execute(ctx context.Context, op string, params domain.Params) (any, error)
	// Catalog returns the operations the service knows.
	Catalog() *domain.Catalog
	// Stats returns a snapshot of the cache.
	Stats() domain.CacheStats
	// Clear drops every cached entry and resets the counters.
	Clear()
	// SetEnabled toggles caching; disabling clears the store.
	SetEnabled(enabled bool)
	// SetTTL changes the entry lifetime used by future lookups.
	SetTTL(seconds int) error
}
