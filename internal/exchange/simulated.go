package exchange

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Simulated replays a seeded base-rate table with a small random walk, for
// running without network access. Each call nudges every non-base rate by up
// to ±1%, the way a slow live feed would drift.
type Simulated struct {
	base string

	mu    sync.Mutex
	rates map[string]decimal.Decimal
}

var _ Source = (*Simulated)(nil)

// NewSimulated seeds a simulated source. Non-positive seed rates are
// dropped; the base rate is pinned at 1.
func NewSimulated(base string, seed map[string]decimal.Decimal) *Simulated {
	rates := make(map[string]decimal.Decimal, len(seed)+1)
	for code, rate := range seed {
		if rate.IsPositive() {
			rates[code] = rate
		}
	}
	rates[base] = decimal.NewFromInt(1)
	return &Simulated{base: base, rates: rates}
}

// Rates drifts the held rates and returns a copy stamped with the current
// time.
func (s *Simulated) Rates(_ context.Context, base string) (map[string]decimal.Decimal, time.Time, error) {
	if !strings.EqualFold(base, s.base) {
		return nil, time.Time{}, fmt.Errorf("unsupported base currency %q", base)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]decimal.Decimal, len(s.rates))
	for code, rate := range s.rates {
		if code == s.base {
			out[code] = rate
			continue
		}
		// Fluctuation factor in [0.99, 1.01).
		factor := decimal.NewFromFloat(0.99 + rand.Float64()*0.02)
		rate = rate.Mul(factor)
		s.rates[code] = rate
		out[code] = rate
	}
	return out, time.Now(), nil
}
