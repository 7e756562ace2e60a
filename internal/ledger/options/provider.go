package options

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// Provider serves Options through a Cache, building them at most once per
// generation for concurrent callers.
type Provider struct {
	cache    Cache
	group    singleflight.Group
	logger   *slog.Logger
	onLookup func(hit bool)
}

// ProviderOption customises a Provider.
type ProviderOption func(*Provider)

// WithLookupObserver calls fn after every cache read with whether it hit.
func WithLookupObserver(fn func(hit bool)) ProviderOption {
	return func(p *Provider) { p.onLookup = fn }
}

// NewProvider returns a provider backed by cache. A nil cache selects an
// in-memory cache with DefaultTTL.
func NewProvider(cache Cache, logger *slog.Logger, opts ...ProviderOption) *Provider {
	if cache == nil {
		cache = NewMemoryCache(DefaultTTL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{cache: cache, logger: logger, onLookup: func(bool) {}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the options of st, from cache when present. Cache failures are
// logged and fall back to building from the store.
func (p *Provider) Get(ctx context.Context, st *store.Store) (Options, error) {
	gen := st.Generation()
	opts, ok, err := p.cache.Get(ctx, gen)
	if err != nil {
		p.logger.Warn("filter options cache read failed", slog.String("generation", gen), slog.Any("error", err))
	}
	p.onLookup(ok && err == nil)
	if ok && err == nil {
		return opts, nil
	}

	resultChan := p.group.DoChan(gen, func() (interface{}, error) {
		opts := Build(st)
		if err := p.cache.Set(context.WithoutCancel(ctx), gen, opts); err != nil {
			p.logger.Warn("filter options cache write failed", slog.String("generation", gen), slog.Any("error", err))
		}
		return opts, nil
	})
	select {
	case <-ctx.Done():
		return Options{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Options{}, res.Err
		}
		return res.Val.(Options), nil
	}
}

// Invalidate drops the cached options of a generation.
func (p *Provider) Invalidate(ctx context.Context, generation string) error {
	p.group.Forget(generation)
	return p.cache.Delete(ctx, generation)
}
