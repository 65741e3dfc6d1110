package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
)

// SpendingChartPNG creates a pie chart showing the expense breakdown by
// category. Returns PNG image bytes.
func SpendingChartPNG(categoryTotals map[string]decimal.Decimal, title string) ([]byte, error) {
	if len(categoryTotals) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	// Stable ordering so repeated exports render identically.
	names := make([]string, 0, len(categoryTotals))
	for name := range categoryTotals {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, 0, len(names))
	for _, name := range names {
		values = append(values, categoryTotals[name].InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// SpendingChartFilename returns the download name for a spending chart.
func SpendingChartFilename(now time.Time) string {
	return fmt.Sprintf("chart_%s.png", now.Format("2006-01-02"))
}
