// Package exchange provides live exchange-rate sources.
package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Source supplies exchange rates expressed against a base currency: one base
// unit buys rates[code] of each currency.
type Source interface {
	Rates(ctx context.Context, base string) (map[string]decimal.Decimal, time.Time, error)
}
