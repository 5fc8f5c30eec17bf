// export_test.go exports private functions for white-box testing.
package cache

import "time"

var (
	CanonicalJSON = canonicalJSON
	HitRate       = hitRate
)

// SetClock replaces the store clock.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
