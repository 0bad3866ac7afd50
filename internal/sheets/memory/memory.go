package memory

import (
	"context"
	"fmt"
	"sync"

	"finclient/internal/core"
	ports "finclient/internal/sheets"
)

// Exporter keeps exported months in memory. It stands in for a spreadsheet
// when none is configured.
type Exporter struct {
	mu     sync.Mutex
	months map[string][][]string
}

var _ ports.ChargeExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{months: make(map[string][][]string)}
}

// ExportCharges stores the rendered rows, replacing a previous export of
// the same month.
func (e *Exporter) ExportCharges(_ context.Context, year, month int, charges []core.EnrichedRecurringExpense) (string, error) {
	if month < 1 || month > 12 {
		return "", core.ErrInvalidMonth
	}
	key := monthKey(year, month)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.months[key] = ports.Rows(charges)
	return "mem:" + key, nil
}

// Rows returns a copy of an exported month and whether it exists.
func (e *Exporter) Rows(year, month int) ([][]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.months[monthKey(year, month)]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
