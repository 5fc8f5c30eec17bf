package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// InvalidationMode selects how a mutating operation purges cached reads.
type InvalidationMode string

const (
	// InvalidationCoarse clears the whole store on any mutating call.
	InvalidationCoarse InvalidationMode = "coarse"
	// InvalidationPrecise purges only the operation prefixes listed in the catalog.
	InvalidationPrecise InvalidationMode = "precise"
)

// ParseInvalidationMode converts a flag or config value into an InvalidationMode.
func ParseInvalidationMode(s string) (InvalidationMode, error) {
	switch InvalidationMode(s) {
	case InvalidationCoarse, InvalidationPrecise:
		return InvalidationMode(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown invalidation mode"), "mode", s)
	}
}

// CacheConfig holds the tunables of one cache engine instance.
type CacheConfig struct {
	TTLSeconds   int              `yaml:"ttlSeconds" json:"ttlSeconds"`
	MaxSize      int              `yaml:"maxSize" json:"maxSize"`
	Enabled      bool             `yaml:"enabled" json:"enabled"`
	Invalidation InvalidationMode `yaml:"invalidation" json:"invalidation"`
}

// DefaultCacheConfig returns the defaults for a deployment using the given invalidation mode.
func DefaultCacheConfig(mode InvalidationMode) CacheConfig {
	return CacheConfig{
		TTLSeconds:   DefaultCacheTTLSeconds,
		MaxSize:      DefaultCacheMaxSize,
		Enabled:      true,
		Invalidation: mode,
	}
}

// Validate reports ErrInvalidConfig for negative bounds or an unknown mode.
func (c CacheConfig) Validate() error {
	if c.TTLSeconds < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "ttl must not be negative"), "ttl_seconds", c.TTLSeconds)
	}
	if c.MaxSize < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "max size must not be negative"), "max_size", c.MaxSize)
	}
	if _, err := ParseInvalidationMode(string(c.Invalidation)); err != nil {
		return err
	}
	return nil
}

// CacheStats is a point-in-time snapshot of a cache engine.
type CacheStats struct {
	Enabled        bool             `json:"enabled"`
	Size           int              `json:"size"`
	MaxSize        int              `json:"maxSize"`
	TTLSeconds     int              `json:"ttlSeconds"`
	Hits           int64            `json:"hits"`
	Misses         int64            `json:"misses"`
	TotalRequests  int64            `json:"totalRequests"`
	HitRatePercent float64          `json:"hitRatePercent"`
	Invalidation   InvalidationMode `json:"invalidation"`
}

// CacheUpdate carries optional runtime changes to a cache engine.
type CacheUpdate struct {
	Enabled    *bool `json:"enabled,omitempty"`
	TTLSeconds *int  `json:"ttlSeconds,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u CacheUpdate) Empty() bool {
	return u.Enabled == nil && u.TTLSeconds == nil
}

func (u CacheUpdate) String() string {
	s := ""
	if u.Enabled != nil {
		s += fmt.Sprintf("enabled=%t", *u.Enabled)
	}
	if u.TTLSeconds != nil {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("ttl=%ds", *u.TTLSeconds)
	}
	return s
}
