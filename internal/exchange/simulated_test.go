package exchange

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSimulatedRates(t *testing.T) {
	t.Parallel()

	seed := map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.85"),
		"JPY": decimal.RequireFromString("110"),
		"XXX": decimal.RequireFromString("-1"),
	}
	src := NewSimulated("USD", seed)

	rates, asOf, err := src.Rates(context.Background(), "USD")
	require.NoError(t, err)
	require.False(t, asOf.IsZero())
	require.True(t, rates["USD"].Equal(decimal.NewFromInt(1)), "base is pinned at 1")
	require.NotContains(t, rates, "XXX", "non-positive seed rates are dropped")

	lo := decimal.RequireFromString("0.99")
	hi := decimal.RequireFromString("1.01")
	for _, code := range []string{"EUR", "JPY"} {
		factor := rates[code].Div(seed[code])
		require.True(t, factor.GreaterThanOrEqual(lo) && factor.LessThanOrEqual(hi),
			"rate for %s drifted by factor %s", code, factor)
	}
}

func TestSimulatedRatesDrift(t *testing.T) {
	t.Parallel()

	src := NewSimulated("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.85"),
	})

	first, _, err := src.Rates(context.Background(), "USD")
	require.NoError(t, err)
	second, _, err := src.Rates(context.Background(), "USD")
	require.NoError(t, err)

	// Successive calls drift from the previous value, not the seed.
	factor := second["EUR"].Div(first["EUR"])
	require.True(t, factor.GreaterThanOrEqual(decimal.RequireFromString("0.99")))
	require.True(t, factor.LessThanOrEqual(decimal.RequireFromString("1.01")))
}

func TestSimulatedUnknownBase(t *testing.T) {
	t.Parallel()

	src := NewSimulated("USD", nil)
	_, _, err := src.Rates(context.Background(), "EUR")
	require.Error(t, err)
}

func TestSimulatedReturnsCopy(t *testing.T) {
	t.Parallel()

	src := NewSimulated("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.85"),
	})

	first, _, err := src.Rates(context.Background(), "USD")
	require.NoError(t, err)
	first["EUR"] = decimal.Zero

	second, _, err := src.Rates(context.Background(), "USD")
	require.NoError(t, err)
	require.True(t, second["EUR"].IsPositive(), "callers cannot corrupt held rates")
}
