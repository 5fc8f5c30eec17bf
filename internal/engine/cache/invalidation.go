package cache

import (
	"fmt"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// invalidation is the outcome of purging for one mutating call.
type invalidation struct {
	op      string
	mode    domain.InvalidationMode
	targets []string
	removed int
}

func (i invalidation) String() string {
	if i.mode == domain.InvalidationCoarse {
		return fmt.Sprintf("Cache cleared due to %s operation (cleared %d cached entries)", i.op, i.removed)
	}
	return fmt.Sprintf("Cache invalidated %v due to %s operation (removed %d cached entries)", i.targets, i.op, i.removed)
}

// invalidate purges the entries made stale by op. In coarse mode every entry
// goes; in precise mode only the catalog's targets for op do, and an op with
// no targets purges nothing. Coarse mode also resets the hit and miss counters.
func invalidate(store *Store, catalog *domain.Catalog, mode domain.InvalidationMode, op string) invalidation {
	res := invalidation{op: op, mode: mode}
	if mode == domain.InvalidationCoarse {
		res.removed = store.Clear()
		return res
	}
	res.targets = catalog.Targets(op)
	for _, target := range res.targets {
		res.removed += store.DeleteByPrefix(target)
	}
	return res
}
