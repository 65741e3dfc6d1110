// Package currency provides the supported-currency table, conversion and
// formatting, and periodic rate refresh.
package currency

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the base unit all exchange rates are expressed against.
const BaseCurrency = "USD"

// Currency describes one supported currency. Rate is the amount of this
// currency one base unit buys.
type Currency struct {
	Code     string
	Symbol   string
	Name     string
	Decimals int32
	Rate     decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func defaultCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Symbol: "$", Name: "US Dollar", Decimals: 2, Rate: d("1")},
		{Code: "EUR", Symbol: "€", Name: "Euro", Decimals: 2, Rate: d("0.85")},
		{Code: "GBP", Symbol: "£", Name: "British Pound", Decimals: 2, Rate: d("0.73")},
		{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Decimals: 0, Rate: d("110")},
		{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Decimals: 2, Rate: d("1.25")},
		{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Decimals: 2, Rate: d("1.35")},
		{Code: "CHF", Symbol: "Fr", Name: "Swiss Franc", Decimals: 2, Rate: d("0.92")},
		{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Decimals: 2, Rate: d("6.45")},
		{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Decimals: 2, Rate: d("74.50")},
		{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Decimals: 2, Rate: d("1.35")},
		{Code: "KRW", Symbol: "₩", Name: "South Korean Won", Decimals: 0, Rate: d("1180")},
		{Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Decimals: 2, Rate: d("5.20")},
	}
}

// Table holds the currency metadata and the mutable exchange rates.
type Table struct {
	mu         sync.RWMutex
	currencies map[string]Currency
	order      []string
}

// NewTable returns a table seeded with the supported currencies.
func NewTable() *Table {
	t := &Table{currencies: make(map[string]Currency)}
	for _, c := range defaultCurrencies() {
		t.currencies[c.Code] = c
		t.order = append(t.order, c.Code)
	}
	return t
}

// Lookup returns the currency for a code.
func (t *Table) Lookup(code string) (Currency, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.currencies[code]
	return c, ok
}

// Codes returns the supported currency codes in stable order.
func (t *Table) Codes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	codes := make([]string, len(t.order))
	copy(codes, t.order)
	return codes
}

// Convert converts an amount between two supported currencies via the base
// unit. Identity when the codes are equal.
func (t *Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	t.mu.RLock()
	fromCur, fromOK := t.currencies[from]
	toCur, toOK := t.currencies[to]
	t.mu.RUnlock()

	if !fromOK {
		return decimal.Zero, fmt.Errorf("unsupported currency %q", from)
	}
	if !toOK {
		return decimal.Zero, fmt.Errorf("unsupported currency %q", to)
	}

	return amount.Div(fromCur.Rate).Mul(toCur.Rate), nil
}

// Format renders the absolute value of an amount with the currency's fixed
// decimal places and symbol. The sign is intentionally dropped: callers
// needing income/expense direction prepend their own "+"/"-".
func (t *Table) Format(amount decimal.Decimal, code string) string {
	t.mu.RLock()
	c, ok := t.currencies[code]
	t.mu.RUnlock()

	if !ok {
		return amount.Abs().StringFixed(2) + " " + code
	}
	return c.Symbol + amount.Abs().StringFixed(c.Decimals)
}

// SimulateRefresh nudges every non-base rate by up to ±1%, modeling a live
// rate feed without calling one.
func (t *Table) SimulateRefresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for code, c := range t.currencies {
		if code == BaseCurrency {
			continue
		}
		// Fluctuation factor in [0.99, 1.01).
		factor := decimal.NewFromFloat(0.99 + rand.Float64()*0.02)
		c.Rate = c.Rate.Mul(factor)
		t.currencies[code] = c
	}
}

// ApplyRates overwrites rates for known codes from a live source. Rates for
// codes outside the table and non-positive rates are ignored. The base rate
// is pinned at 1.
func (t *Table) ApplyRates(rates map[string]decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for code, rate := range rates {
		if code == BaseCurrency || !rate.IsPositive() {
			continue
		}
		c, ok := t.currencies[code]
		if !ok {
			continue
		}
		c.Rate = rate
		t.currencies[code] = c
	}
}

// Rates returns a copy of the current rate map.
func (t *Table) Rates() map[string]decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rates := make(map[string]decimal.Decimal, len(t.currencies))
	for code, c := range t.currencies {
		rates[code] = c.Rate
	}
	return rates
}
