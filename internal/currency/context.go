package currency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
)

// RateSource supplies exchange rates relative to a base currency.
// Implemented by internal/exchange; the table's simulated refresh is used
// when no source is wired.
type RateSource interface {
	Rates(ctx context.Context, base string) (map[string]decimal.Decimal, time.Time, error)
}

// Context carries the active display currency for one session and keeps the
// rate table fresh. It replaces the ambient global the original design used:
// construct one at session start, cancel its refresh loop at session end.
type Context struct {
	table  *Table
	source RateSource

	mu      sync.RWMutex
	current string
}

// NewContext returns a session currency context. source may be nil; the
// refresh loop then falls back to simulated fluctuations.
func NewContext(table *Table, source RateSource, initial string) (*Context, error) {
	if initial == "" {
		initial = BaseCurrency
	}
	if _, ok := table.Lookup(initial); !ok {
		return nil, fmt.Errorf("unsupported currency %q", initial)
	}
	return &Context{table: table, source: source, current: initial}, nil
}

// Table returns the shared currency table.
func (c *Context) Table() *Table { return c.table }

// Current returns the session's display currency.
func (c *Context) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetCurrent switches the session's display currency.
func (c *Context) SetCurrent(code string) error {
	if _, ok := c.table.Lookup(code); !ok {
		return fmt.Errorf("unsupported currency %q", code)
	}
	c.mu.Lock()
	c.current = code
	c.mu.Unlock()
	return nil
}

// Convert converts an amount into the session's display currency.
func (c *Context) Convert(amount decimal.Decimal, from string) (decimal.Decimal, error) {
	return c.table.Convert(amount, from, c.Current())
}

// RefreshLoop refreshes exchange rates every interval until ctx is
// cancelled. One refresh runs immediately on start.
func (c *Context) RefreshLoop(ctx context.Context, interval time.Duration) {
	logger.Log.Info().
		Dur("interval", interval).
		Bool("live_source", c.source != nil).
		Msg("Exchange rate refresh loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.refreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Exchange rate refresh loop stopped")
			return
		case <-ticker.C:
			c.refreshOnce(ctx)
		}
	}
}

func (c *Context) refreshOnce(ctx context.Context) {
	if c.source == nil {
		c.table.SimulateRefresh()
		return
	}

	rates, rateDate, err := c.source.Rates(ctx, BaseCurrency)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Rate refresh failed, keeping previous rates")
		return
	}
	c.table.ApplyRates(rates)
	logger.Log.Debug().
		Int("rates", len(rates)).
		Str("rate_date", rateDate.Format("2006-01-02")).
		Msg("Exchange rates applied")
}
