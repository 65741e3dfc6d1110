package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRateSource struct {
	rates map[string]decimal.Decimal
	date  time.Time
	err   error
	calls int
}

func (s *stubRateSource) Rates(_ context.Context, _ string) (map[string]decimal.Decimal, time.Time, error) {
	s.calls++
	if s.err != nil {
		return nil, time.Time{}, s.err
	}
	return s.rates, s.date, nil
}

func TestNewContext(t *testing.T) {
	t.Parallel()

	table := NewTable()

	t.Run("empty initial falls back to base", func(t *testing.T) {
		c, err := NewContext(table, nil, "")
		require.NoError(t, err)
		require.Equal(t, BaseCurrency, c.Current())
	})

	t.Run("known initial", func(t *testing.T) {
		c, err := NewContext(table, nil, "EUR")
		require.NoError(t, err)
		require.Equal(t, "EUR", c.Current())
	})

	t.Run("unknown initial", func(t *testing.T) {
		_, err := NewContext(table, nil, "XXX")
		require.Error(t, err)
	})
}

func TestSetCurrent(t *testing.T) {
	t.Parallel()

	c, err := NewContext(NewTable(), nil, "USD")
	require.NoError(t, err)

	require.NoError(t, c.SetCurrent("GBP"))
	require.Equal(t, "GBP", c.Current())

	require.Error(t, c.SetCurrent("NOPE"))
	require.Equal(t, "GBP", c.Current(), "failed switch must not change the current currency")
}

func TestContextConvert(t *testing.T) {
	t.Parallel()

	c, err := NewContext(NewTable(), nil, "EUR")
	require.NoError(t, err)

	got, err := c.Convert(decimal.RequireFromString("100"), "USD")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("85").Equal(got), "got %s", got)
}

func TestRefreshOnce(t *testing.T) {
	t.Parallel()

	t.Run("nil source simulates", func(t *testing.T) {
		table := NewTable()
		c, err := NewContext(table, nil, "USD")
		require.NoError(t, err)

		c.refreshOnce(context.Background())
		require.True(t, table.Rates()["USD"].Equal(decimal.NewFromInt(1)))
	})

	t.Run("live source applies rates", func(t *testing.T) {
		table := NewTable()
		source := &stubRateSource{
			rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.95")},
			date:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		}
		c, err := NewContext(table, source, "USD")
		require.NoError(t, err)

		c.refreshOnce(context.Background())
		require.Equal(t, 1, source.calls)
		require.True(t, decimal.RequireFromString("0.95").Equal(table.Rates()["EUR"]))
	})

	t.Run("source failure keeps previous rates", func(t *testing.T) {
		table := NewTable()
		source := &stubRateSource{err: errors.New("rate feed down")}
		c, err := NewContext(table, source, "USD")
		require.NoError(t, err)

		before := table.Rates()
		c.refreshOnce(context.Background())
		after := table.Rates()
		for code, rate := range before {
			require.True(t, rate.Equal(after[code]), "%s changed on failed refresh", code)
		}
	})
}
