package options

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/glreport/internal/ledger/ledgertest"
)

func TestBuildOrdering(t *testing.T) {
	st := ledgertest.Sample().
		Subsidiary(3, "").
		Subsidiary(1, "HQ").
		Period(4, "", 2025, 1, 1).
		Period(5, "Dec 2023", 2023, 4, 12).
		Store()

	opts := Build(st)
	require.Equal(t, []Subsidiary{{ID: 2, Name: "Branch"}, {ID: 1, Name: "HQ"}, {ID: 3, Name: ""}}, opts.Subsidiaries)

	names := make([]string, len(opts.Periods))
	for i, p := range opts.Periods {
		names[i] = p.Name
	}
	require.Equal(t, []string{"Apr 2024", "Feb 2024", "Jan 2024", "Dec 2023"}, names)
	require.Equal(t, []int64{10, 20}, opts.Departments)
	require.Equal(t, []string{"AcctPay", "AcctRec", "Bank", "COGS", "Equity", "Expense", "Income"}, opts.AccountTypes)
}

func TestBuildSyntheticPeriod(t *testing.T) {
	opts := Build(ledgertest.Sample().WithoutPeriods().Store())
	require.Len(t, opts.Periods, 1)
	require.Equal(t, "No Period Data", opts.Periods[0].Name)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "gen", Options{AccountTypes: []string{"Bank"}}))
	got, ok, err := c.Get(ctx, "gen")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"Bank"}, got.AccountTypes)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "gen")
	require.NoError(t, err)
	require.False(t, ok)
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	opts := Build(ledgertest.Sample().Store())

	require.NoError(t, c.Set(ctx, "gen-1", opts))
	require.True(t, mr.Exists(Key("gen-1")))
	require.Equal(t, time.Minute, mr.TTL(Key("gen-1")))

	got, ok, err := c.Get(ctx, "gen-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, opts, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "gen-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	require.NoError(t, c.Set(ctx, "gen-2", Options{}))
	require.NoError(t, c.Delete(ctx, "gen-2"))
	require.False(t, mr.Exists(Key("gen-2")))
}

type countingCache struct {
	*MemoryCache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, generation string, opts Options) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.MemoryCache.Set(ctx, generation, opts)
}

func TestProviderCachesPerGeneration(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{MemoryCache: NewMemoryCache(time.Minute)}
	p := NewProvider(cache, nil)
	st := ledgertest.Sample().Store()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts, err := p.Get(ctx, st)
			assert.NoError(t, err)
			assert.Len(t, opts.Subsidiaries, 2)
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, cache.sets, 8)
	before := cache.sets

	_, err := p.Get(ctx, st)
	require.NoError(t, err)
	require.Equal(t, before, cache.sets)

	other := ledgertest.Sample().Store()
	_, err = p.Get(ctx, other)
	require.NoError(t, err)
	require.Equal(t, before+1, cache.sets)

	require.NoError(t, p.Invalidate(ctx, st.Generation()))
	_, ok, err := cache.Get(ctx, st.Generation())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProviderFallsBackOnRedisFailure(t *testing.T) {
	c, mr := newRedisCache(t)
	mr.Close()
	p := NewProvider(c, nil)
	opts, err := p.Get(context.Background(), ledgertest.Sample().Store())
	require.NoError(t, err)
	require.NotEmpty(t, opts.AccountTypes)
}

func TestProviderReportsLookups(t *testing.T) {
	var hits, misses int
	p := NewProvider(nil, nil, WithLookupObserver(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))
	st := ledgertest.Sample().Store()
	for i := 0; i < 3; i++ {
		_, err := p.Get(context.Background(), st)
		require.NoError(t, err)
	}
	require.Equal(t, 1, misses)
	require.Equal(t, 2, hits)
}
