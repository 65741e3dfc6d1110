package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	date  time.Time
	err   error
	calls int
}

func (s *stubSource) Rates(_ context.Context, _ string) (map[string]decimal.Decimal, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, time.Time{}, s.err
	}
	return s.rates, s.date, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCachedSourceServesFromCache(t *testing.T) {
	t.Parallel()

	inner := &stubSource{
		rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.85")},
		date:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	cached := NewCachedSource(inner, time.Hour)
	ctx := context.Background()

	first, firstDate, err := cached.Rates(ctx, "usd")
	require.NoError(t, err)
	require.Equal(t, inner.date, firstDate)
	require.True(t, decimal.RequireFromString("0.85").Equal(first["EUR"]))

	// Base normalization means "USD" hits the same cache entry.
	second, _, err := cached.Rates(ctx, "USD")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("0.85").Equal(second["EUR"]))
	require.Equal(t, 1, inner.callCount())
}

func TestCachedSourceExpiry(t *testing.T) {
	t.Parallel()

	inner := &stubSource{
		rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.85")},
		date:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	cached := NewCachedSource(inner, time.Nanosecond)
	ctx := context.Background()

	_, _, err := cached.Rates(ctx, "USD")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, _, err = cached.Rates(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, 2, inner.callCount())
}

func TestCachedSourceReturnsCopies(t *testing.T) {
	t.Parallel()

	inner := &stubSource{
		rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.85")},
		date:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	cached := NewCachedSource(inner, time.Hour)
	ctx := context.Background()

	first, _, err := cached.Rates(ctx, "USD")
	require.NoError(t, err)
	first["EUR"] = decimal.NewFromInt(99)

	second, _, err := cached.Rates(ctx, "USD")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("0.85").Equal(second["EUR"]),
		"mutating a returned map must not poison the cache")
}

func TestCachedSourceErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil inner source", func(t *testing.T) {
		cached := NewCachedSource(nil, time.Hour)
		_, _, err := cached.Rates(context.Background(), "USD")
		require.Error(t, err)
	})

	t.Run("inner failure is not cached", func(t *testing.T) {
		inner := &stubSource{err: errors.New("upstream down")}
		cached := NewCachedSource(inner, time.Hour)
		ctx := context.Background()

		_, _, err := cached.Rates(ctx, "USD")
		require.Error(t, err)

		inner.mu.Lock()
		inner.err = nil
		inner.rates = map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.9")}
		inner.date = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
		inner.mu.Unlock()

		rates, _, err := cached.Rates(ctx, "USD")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("0.9").Equal(rates["EUR"]))
	})

	t.Run("empty rate table is an error", func(t *testing.T) {
		inner := &stubSource{rates: map[string]decimal.Decimal{}}
		cached := NewCachedSource(inner, time.Hour)
		_, _, err := cached.Rates(context.Background(), "USD")
		require.Error(t, err)
		require.Contains(t, err.Error(), "no rates")
	})
}

func TestCachedSourceSingleFlight(t *testing.T) {
	t.Parallel()

	inner := &stubSource{
		rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.85")},
		date:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	cached := NewCachedSource(inner, time.Hour)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = cached.Rates(ctx, "USD")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	// All concurrent callers may race past the cache check before the first
	// fetch lands, but in-flight collapsing keeps upstream calls well below
	// the caller count.
	require.LessOrEqual(t, inner.callCount(), workers)
	require.GreaterOrEqual(t, inner.callCount(), 1)
}
