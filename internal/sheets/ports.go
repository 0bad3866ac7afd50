package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"finclient/internal/core"
)

// Ports for outbound adapters.
type (
	// ChargeExporter writes a month of upcoming charges to an external sheet.
	ChargeExporter interface {
		// ExportCharges replaces the month's export and returns a reference
		// to where it was written.
		ExportCharges(ctx context.Context, year, month int, charges []core.EnrichedRecurringExpense) (ref string, err error)
	}
)

// Header is the first row of every export.
var Header = []string{"Date", "Description", "Category", "Account", "Amount"}

// Rows renders charges as sheet rows: the header, one row per charge and a
// closing total row. Amounts are magnitudes with two decimals.
func Rows(charges []core.EnrichedRecurringExpense) [][]string {
	rows := make([][]string, 0, len(charges)+2)
	rows = append(rows, append([]string(nil), Header...))

	total := decimal.Zero
	for _, c := range charges {
		category := ""
		if c.Category != nil {
			category = c.Category.Name
		}
		amount := core.Magnitude(c.Amount)
		total = total.Add(amount)
		rows = append(rows, []string{
			c.NextChargeDate,
			c.Description,
			category,
			c.Account.Name,
			core.FormatAmount(amount),
		})
	}

	rows = append(rows, []string{"", "Total", "", "", core.FormatAmount(total)})
	return rows
}
