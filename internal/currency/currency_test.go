package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	table := NewTable()

	t.Run("same currency is identity", func(t *testing.T) {
		amount := decimal.RequireFromString("123.45")
		got, err := table.Convert(amount, "USD", "USD")
		require.NoError(t, err)
		require.True(t, amount.Equal(got))
	})

	t.Run("base to quote uses the quote rate", func(t *testing.T) {
		got, err := table.Convert(decimal.RequireFromString("100"), "USD", "EUR")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("85").Equal(got), "got %s", got)
	})

	t.Run("cross rate goes through the base", func(t *testing.T) {
		// 85 EUR -> 100 USD -> 73 GBP.
		got, err := table.Convert(decimal.RequireFromString("85"), "EUR", "GBP")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("73").Equal(got), "got %s", got)
	})

	t.Run("unknown source currency", func(t *testing.T) {
		_, err := table.Convert(decimal.NewFromInt(1), "XXX", "USD")
		require.Error(t, err)
		require.Contains(t, err.Error(), "XXX")
	})

	t.Run("unknown target currency", func(t *testing.T) {
		_, err := table.Convert(decimal.NewFromInt(1), "USD", "ZZZ")
		require.Error(t, err)
	})
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	table := NewTable()
	codes := table.Codes()
	tolerance := decimal.RequireFromString("0.000001")

	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(t, "cents")
		amount := decimal.New(cents, -2)
		from := rapid.SampledFrom(codes).Draw(t, "from")
		to := rapid.SampledFrom(codes).Draw(t, "to")

		converted, err := table.Convert(amount, from, to)
		require.NoError(t, err)
		back, err := table.Convert(converted, to, from)
		require.NoError(t, err)

		diff := back.Sub(amount).Abs()
		require.True(t, diff.LessThanOrEqual(tolerance),
			"%s %s -> %s -> back drifted by %s", amount, from, to, diff)
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	table := NewTable()

	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{name: "positive USD", amount: "1234.5", code: "USD", want: "$1234.50"},
		{name: "negative drops the sign", amount: "-42.5", code: "USD", want: "$42.50"},
		{name: "JPY has no decimals", amount: "1234.56", code: "JPY", want: "¥1235"},
		{name: "KRW has no decimals", amount: "-1000.4", code: "KRW", want: "₩1000"},
		{name: "EUR symbol", amount: "9.999", code: "EUR", want: "€10.00"},
		{name: "unknown code falls back to two decimals", amount: "-3.14159", code: "XYZ", want: "3.14 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Format(decimal.RequireFromString(tt.amount), tt.code)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCodesStableOrder(t *testing.T) {
	t.Parallel()

	table := NewTable()
	codes := table.Codes()
	require.Len(t, codes, 12)
	require.Equal(t, "USD", codes[0])
	require.Equal(t, codes, table.Codes())
}

func TestApplyRates(t *testing.T) {
	t.Parallel()

	table := NewTable()
	table.ApplyRates(map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.9"),
		"USD": decimal.RequireFromString("2"),   // base is pinned
		"XXX": decimal.RequireFromString("5"),   // unknown code ignored
		"GBP": decimal.RequireFromString("-1"),  // non-positive ignored
		"JPY": decimal.RequireFromString("150"), // applied
	})

	rates := table.Rates()
	require.True(t, decimal.RequireFromString("0.9").Equal(rates["EUR"]))
	require.True(t, decimal.NewFromInt(1).Equal(rates["USD"]))
	require.True(t, decimal.RequireFromString("0.73").Equal(rates["GBP"]))
	require.True(t, decimal.RequireFromString("150").Equal(rates["JPY"]))
	_, ok := rates["XXX"]
	require.False(t, ok)
}

func TestSimulateRefresh(t *testing.T) {
	t.Parallel()

	table := NewTable()
	before := table.Rates()
	table.SimulateRefresh()
	after := table.Rates()

	require.True(t, before["USD"].Equal(after["USD"]), "base rate must stay pinned")

	low := decimal.RequireFromString("0.99")
	high := decimal.RequireFromString("1.01")
	for code, rate := range after {
		if code == BaseCurrency {
			continue
		}
		factor := rate.Div(before[code])
		require.True(t, factor.GreaterThanOrEqual(low) && factor.LessThanOrEqual(high),
			"%s moved by factor %s", code, factor)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	table := NewTable()

	c, ok := table.Lookup("INR")
	require.True(t, ok)
	require.Equal(t, "₹", c.Symbol)
	require.Equal(t, "Indian Rupee", c.Name)

	_, ok = table.Lookup("xxx")
	require.False(t, ok)
}
