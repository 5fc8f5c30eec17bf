package ports

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// Dispatcher performs an operation call when the cache cannot answer it.
//
//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks
type Dispatcher interface {
	// Dispatch executes the named operation and returns its JSON-compatible result.
	Dispatch(ctx context.Context, op string, params domain.Params) (any, error)
}
