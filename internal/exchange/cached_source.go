package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type cachedRates struct {
	Rates     map[string]decimal.Decimal
	RateDate  time.Time
	ExpiresAt time.Time
}

type inFlightCall struct {
	done     chan struct{}
	rates    map[string]decimal.Decimal
	rateDate time.Time
	err      error
}

// CachedSource wraps a rate Source with in-memory TTL caching, keyed by
// normalized base currency. Concurrent refreshes for the same base are
// collapsed into a single upstream call.
type CachedSource struct {
	inner Source
	ttl   time.Duration

	mu       sync.RWMutex
	cache    map[string]cachedRates
	inFlight map[string]*inFlightCall
}

// NewCachedSource returns a source that caches rate tables in memory.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CachedSource{
		inner:    inner,
		ttl:      ttl,
		cache:    make(map[string]cachedRates),
		inFlight: make(map[string]*inFlightCall),
	}
}

// Rates returns cached rates when fresh, refreshing from the inner source
// otherwise.
func (s *CachedSource) Rates(
	ctx context.Context,
	base string,
) (map[string]decimal.Decimal, time.Time, error) {
	if s.inner == nil {
		return nil, time.Time{}, errors.New("inner exchange source is required")
	}

	key := strings.ToUpper(strings.TrimSpace(base))
	now := time.Now()

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && now.Before(entry.ExpiresAt) {
		return copyRates(entry.Rates), entry.RateDate, nil
	}

	s.mu.Lock()
	// Re-check under write lock in case another goroutine refreshed it.
	entry, ok = s.cache[key]
	if ok && now.Before(entry.ExpiresAt) {
		s.mu.Unlock()
		return copyRates(entry.Rates), entry.RateDate, nil
	}
	if ok {
		delete(s.cache, key)
	}

	if call, waiting := s.inFlight[key]; waiting {
		s.mu.Unlock()
		return waitForInFlight(ctx, call)
	}

	call := &inFlightCall{done: make(chan struct{})}
	s.inFlight[key] = call
	s.mu.Unlock()

	// Run refresh with cancellation detached from a single caller so one
	// short/deadline-bound caller cannot fail all concurrent waiters.
	go s.fetchAndBroadcast(context.WithoutCancel(ctx), key, call)
	return waitForInFlight(ctx, call)
}

func (s *CachedSource) fetchAndBroadcast(ctx context.Context, key string, call *inFlightCall) {
	rates, rateDate, err := s.inner.Rates(ctx, key)
	if err == nil && len(rates) == 0 {
		err = errors.New("exchange source returned no rates")
	}

	s.mu.Lock()
	if err == nil {
		s.cache[key] = cachedRates{
			Rates:     rates,
			RateDate:  rateDate,
			ExpiresAt: time.Now().Add(s.ttl),
		}
	}
	call.rates = rates
	call.rateDate = rateDate
	call.err = err
	delete(s.inFlight, key)
	close(call.done)
	s.mu.Unlock()
}

func waitForInFlight(ctx context.Context, call *inFlightCall) (map[string]decimal.Decimal, time.Time, error) {
	select {
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	case <-call.done:
		if call.err != nil {
			return nil, time.Time{}, call.err
		}
		return copyRates(call.rates), call.rateDate, nil
	}
}

func copyRates(rates map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		out[code] = rate
	}
	return out
}
