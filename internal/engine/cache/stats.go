package cache

import (
	"math"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// hitRate returns hits as a percentage of all lookups, rounded to two decimals.
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}

func snapshot(store *Store, cfg domain.CacheConfig) domain.CacheStats {
	hits, misses := store.Counters()
	return domain.CacheStats{
		Enabled:        cfg.Enabled,
		Size:           store.Len(),
		MaxSize:        cfg.MaxSize,
		TTLSeconds:     cfg.TTLSeconds,
		Hits:           hits,
		Misses:         misses,
		TotalRequests:  hits + misses,
		HitRatePercent: hitRate(hits, misses),
		Invalidation:   cfg.Invalidation,
	}
}
