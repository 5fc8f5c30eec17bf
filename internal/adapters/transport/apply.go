package transport

import (
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
)

// Apply performs a runtime cache update on svc. The TTL is validated before
// anything changes.
func Apply(svc ports.ToolService, update domain.CacheUpdate) error {
	if update.TTLSeconds != nil {
		if err := svc.SetTTL(*update.TTLSeconds); err != nil {
			return err
		}
	}
	if update.Enabled != nil {
		svc.SetEnabled(*update.Enabled)
	}
	return nil
}
