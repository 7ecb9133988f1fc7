package tenantconf

import (
	"context"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lumenchat/canopy/pkg/observability"
	"github.com/lumenchat/canopy/pkg/tenant"
)

const (
	defaultCacheSize = 1024

	sourceCache      = "cache"
	sourceInline     = "inline"
	sourceLegacyFile = "legacy_file"
	sourceDefault    = "default"

	cacheType = "tenant_config"
)

// Resolver resolves tenant configurations and owns their in-process cache.
// Construct one per process and share it; each Resolver has an independent
// cache, which keeps unit tests isolated.
type Resolver struct {
	store   tenant.Store
	cache   *lru.LRU[string, Config]
	logger  *observability.Logger
	metrics *observability.Metrics
	bus     *InvalidationBus

	cacheSize int
	cacheTTL  time.Duration
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the structured logger
func WithLogger(logger *observability.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Resolver) { r.metrics = metrics }
}

// WithInvalidationBus broadcasts invalidations to other instances and applies
// invalidations broadcast by them (see SubscribeInvalidations).
func WithInvalidationBus(bus *InvalidationBus) Option {
	return func(r *Resolver) { r.bus = bus }
}

// WithCacheSize bounds the number of cached tenants
func WithCacheSize(size int) Option {
	return func(r *Resolver) { r.cacheSize = size }
}

// WithCacheTTL expires cached entries after the given duration, so an update
// that misses an invalidation (for example one made through another
// instance) self-heals. Zero disables expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.cacheTTL = ttl }
}

// NewResolver creates a Resolver backed by the given store
func NewResolver(store tenant.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = observability.NewLogger(observability.InfoLevel, os.Stdout)
	}
	r.cache = lru.NewLRU[string, Config](r.cacheSize, nil, r.cacheTTL)
	return r
}

// Resolve returns the fully merged configuration for a tenant slug. Cached
// results are returned without re-parsing. A missing or soft-deleted tenant
// fails with *tenant.NotFoundError; a missing or unreadable document never
// fails, it degrades to defaults.
//
// Two concurrent resolutions of the same uncached tenant may both miss and
// both parse; the result is a pure function of persisted state, so
// last-write-wins into the cache is correct and no lock is taken.
func (r *Resolver) Resolve(ctx context.Context, slug string) (Config, error) {
	if cfg, ok := r.cache.Get(slug); ok {
		r.recordResolution(sourceCache, 0)
		r.recordCache(true)
		return cfg, nil
	}
	r.recordCache(false)

	start := time.Now()
	customer, err := r.store.FindActiveCustomerBySlug(ctx, slug)
	if err != nil {
		return Config{}, err
	}

	raw, source := r.rawDocument(customer)
	cfg := MergeOverDefaults(ParseLenient(raw), StrictDefaults())

	r.cache.Add(slug, cfg)
	r.recordResolution(source, time.Since(start))
	r.logger.WithTenant(slug).WithField("source", source).Debug("tenant configuration resolved")
	return cfg, nil
}

// rawDocument picks the source of truth for a customer's document:
// inline text, then the legacy file path, then a synthesized default.
func (r *Resolver) rawDocument(customer *tenant.Customer) (string, string) {
	if strings.TrimSpace(customer.ConfigText) != "" {
		return customer.ConfigText, sourceInline
	}

	if customer.LegacyConfigPath != "" {
		data, err := os.ReadFile(customer.LegacyConfigPath)
		if err != nil {
			r.logger.WithError(err).WithTenant(customer.Slug).
				Warn("legacy config file unreadable, falling back to defaults")
		} else {
			return string(data), sourceLegacyFile
		}
	}

	return DefaultDocument(customer.Slug), sourceDefault
}

// Invalidate removes one tenant's cached configuration and broadcasts the
// invalidation when a bus is configured. Every write path that changes a
// tenant's stored document must call this after the write succeeds.
func (r *Resolver) Invalidate(slug string) {
	r.invalidateLocal(slug)
	r.recordInvalidation("one")
	if r.bus != nil {
		if err := r.bus.Publish(context.Background(), slug); err != nil {
			r.logger.WithError(err).WithTenant(slug).Warn("failed to broadcast invalidation")
		}
	}
}

// InvalidateAll clears the entire cache and broadcasts when a bus is
// configured.
func (r *Resolver) InvalidateAll() {
	r.cache.Purge()
	r.recordInvalidation("all")
	r.updateCacheGauge()
	if r.bus != nil {
		if err := r.bus.Publish(context.Background(), invalidateAllToken); err != nil {
			r.logger.WithError(err).Warn("failed to broadcast invalidation")
		}
	}
}

// SubscribeInvalidations applies invalidations broadcast by other instances
// until ctx is cancelled. It is a no-op without a bus.
func (r *Resolver) SubscribeInvalidations(ctx context.Context) {
	if r.bus == nil {
		return
	}
	r.bus.Subscribe(ctx, func(slug string) {
		if slug == invalidateAllToken {
			r.cache.Purge()
		} else {
			r.invalidateLocal(slug)
		}
		r.updateCacheGauge()
	})
}

// CacheLen returns the number of cached tenant configurations
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

func (r *Resolver) invalidateLocal(slug string) {
	r.cache.Remove(slug)
	r.updateCacheGauge()
}

func (r *Resolver) recordResolution(source string, d time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ResolutionsTotal.WithLabelValues(source).Inc()
	if source != sourceCache {
		r.metrics.ResolutionDuration.Observe(d.Seconds())
	}
	r.updateCacheGauge()
}

func (r *Resolver) recordCache(hit bool) {
	if r.metrics == nil {
		return
	}
	if hit {
		r.metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		r.metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

func (r *Resolver) recordInvalidation(scope string) {
	if r.metrics == nil {
		return
	}
	r.metrics.InvalidationsTotal.WithLabelValues(scope).Inc()
}

func (r *Resolver) updateCacheGauge() {
	if r.metrics == nil {
		return
	}
	r.metrics.CacheEntries.Set(float64(r.cache.Len()))
}
