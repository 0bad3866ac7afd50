package services

import (
	"context"
	"errors"
	"fmt"

	flog "finclient/internal/log"
	"finclient/internal/sheets"
)

// ErrNothingToExport is returned when the charges could not be loaded.
var ErrNothingToExport = errors.New("upcoming charges unavailable, nothing exported")

// Export writes the user's charges for the current month through exporter
// and returns where they were written.
func (s *RecurringService) Export(ctx context.Context, userID string, exporter sheets.ChargeExporter) (string, error) {
	up, err := s.Upcoming(ctx, userID)
	if err != nil {
		return "", err
	}
	if up.Failed {
		return "", ErrNothingToExport
	}

	now := s.now()
	ref, err := exporter.ExportCharges(ctx, now.Year(), int(now.Month()), up.Charges)
	if err != nil {
		return "", fmt.Errorf("export charges: %w", err)
	}

	s.logger.InfoContext(ctx, "Charges exported",
		flog.FieldUserID, userID,
		flog.FieldOperation, flog.OpExport,
		flog.FieldCount, len(up.Charges),
		"ref", ref)
	return ref, nil
}
