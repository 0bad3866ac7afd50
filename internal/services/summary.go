package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finclient/internal/core"
)

const uncategorized = "Uncategorized"

// Summarize totals the magnitudes of the month's charges, overall and by
// category name. Categories are ordered by amount, largest first.
func Summarize(charges []core.EnrichedRecurringExpense, now time.Time) core.MonthOverview {
	overview := core.MonthOverview{
		Year:  now.Year(),
		Month: int(now.Month()),
		Total: decimal.Zero,
	}

	totals := make(map[string]decimal.Decimal)
	for _, c := range charges {
		amount := core.Magnitude(c.Amount)
		overview.Total = overview.Total.Add(amount)

		name := uncategorized
		if c.Category != nil && c.Category.Name != "" {
			name = c.Category.Name
		}
		totals[name] = totals[name].Add(amount)
	}

	overview.ByCategory = make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		a, b := overview.ByCategory[i], overview.ByCategory[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Name < b.Name
	})
	return overview
}
