// Package cache implements the response cache placed in front of an operation dispatcher.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine memoizes cacheable operations and invalidates them on writes.
// One Engine is shared by all concurrent callers of a client or server.
type Engine struct {
	mu         sync.Mutex
	store      *Store
	cfg        domain.CacheConfig
	catalog    *domain.Catalog
	dispatcher ports.Dispatcher
	logger     ports.Logger
	tracer     ports.Tracer
	logHits    bool
	// generation increments whenever entries are dropped, so a read that
	// missed before the drop does not store its result after it.
	generation uint64
}

var _ ports.ToolService = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that receives invalidation and bypass messages.
// A nil logger keeps the default, which discards.
func WithLogger(l ports.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer records one span per Execute. A nil tracer keeps the no-op default.
func WithTracer(t ports.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithHitLog logs every cache hit.
func WithHitLog() Option {
	return func(e *Engine) {
		e.logHits = true
	}
}

// New creates an Engine over dispatcher using the given catalog.
func New(cfg domain.CacheConfig, catalog *domain.Catalog, dispatcher ports.Dispatcher, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, zerr.New("catalog cannot be nil")
	}
	if dispatcher == nil {
		return nil, zerr.New("dispatcher cannot be nil")
	}
	e := &Engine{
		store:      NewStore(seconds(cfg.TTLSeconds), cfg.MaxSize),
		cfg:        cfg,
		catalog:    catalog,
		dispatcher: dispatcher,
		logger:     nopLogger{},
		tracer:     nopTracer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Configure replaces the cache configuration. Shrinking the size evicts at once,
// and disabling clears the store and counters.
func (e *Engine) Configure(cfg domain.CacheConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.SetTTL(seconds(cfg.TTLSeconds))
	e.store.Resize(cfg.MaxSize)
	if e.cfg.Enabled && !cfg.Enabled {
		e.store.Clear()
		e.generation++
	}
	e.cfg = cfg
	return nil
}

// Execute runs op through the cache. Mutating operations invalidate before
// they are dispatched, whatever the dispatch outcome. Dispatcher errors are
// returned unchanged.
func (e *Engine) Execute(ctx context.Context, op string, params domain.Params) (any, error) {
	ctx, span := e.tracer.Start(ctx, "cache.execute")
	defer span.End()
	span.SetAttribute("operation", op)

	e.mu.Lock()
	enabled := e.cfg.Enabled
	e.mu.Unlock()

	switch {
	case !enabled:
		span.SetAttribute("cache.hit", false)
		return e.dispatch(ctx, span, op, params)
	case e.catalog.IsMutating(op):
		e.invalidate(op)
		return e.dispatch(ctx, span, op, params)
	case e.catalog.IsCacheable(op):
		return e.lookup(ctx, span, op, params)
	default:
		return e.dispatch(ctx, span, op, params)
	}
}

func (e *Engine) lookup(ctx context.Context, span ports.Span, op string, params domain.Params) (any, error) {
	key, err := Key(op, params)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("bypassing cache for %s: %v", op, err))
		span.SetAttribute("cache.hit", false)
		return e.dispatch(ctx, span, op, params)
	}
	span.SetAttribute("cache.key", key)

	e.mu.Lock()
	value, hit := e.store.Get(key)
	gen := e.generation
	e.mu.Unlock()

	span.SetAttribute("cache.hit", hit)
	if hit {
		if e.logHits {
			e.logger.Info("Cache hit: " + op)
		}
		return cloneValue(value), nil
	}

	result, err := e.dispatch(ctx, span, op, params)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.cfg.Enabled && e.generation == gen {
		e.store.Put(key, cloneValue(result))
	}
	e.mu.Unlock()
	return result, nil
}

func (e *Engine) dispatch(ctx context.Context, span ports.Span, op string, params domain.Params) (any, error) {
	result, err := e.dispatcher.Dispatch(ctx, op, params)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

func (e *Engine) invalidate(op string) {
	e.mu.Lock()
	res := invalidate(e.store, e.catalog, e.cfg.Invalidation, op)
	e.generation++
	e.mu.Unlock()

	if res.removed > 0 {
		e.logger.Info(res.String())
	}
}

// Stats returns a snapshot of the configuration and counters.
func (e *Engine) Stats() domain.CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.store, e.cfg)
}

// Clear drops every entry and resets the counters.
func (e *Engine) Clear() {
	e.mu.Lock()
	n := e.store.Clear()
	e.generation++
	e.mu.Unlock()
	e.logger.Info(fmt.Sprintf("Cache cleared (%d entries removed)", n))
}

// SetEnabled toggles caching. Disabling clears the store and counters so a
// re-enabled cache starts cold.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !enabled {
		e.store.Clear()
		e.generation++
	}
	e.cfg.Enabled = enabled
}

// SetTTL changes the entry lifetime. Stored entries keep their timestamps,
// so the new TTL applies to them at their next lookup.
func (e *Engine) SetTTL(ttlSeconds int) error {
	if ttlSeconds < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "ttl must not be negative"), "ttl_seconds", ttlSeconds)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetTTL(seconds(ttlSeconds))
	e.cfg.TTLSeconds = ttlSeconds
	return nil
}

// Config returns the current configuration.
func (e *Engine) Config() domain.CacheConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Catalog returns the operation catalog the engine classifies calls with.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Close clears the store at shutdown.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	e.generation++
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End() {}
func (nopSpan) RecordError(error) {}
func (nopSpan) SetAttribute(string, any) {}
