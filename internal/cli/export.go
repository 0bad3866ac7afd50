package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export this month's upcoming charges to a spreadsheet",
		Long: `Writes the upcoming charges of the current month to the spreadsheet named by
GOOGLE_SPREADSHEET_ID, one sheet per month. Without a spreadsheet the rows are
rendered in memory only, which is useful to check what would be written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, app *App, userID string) error {
				exporter, err := app.Exporter(ctx)
				if err != nil {
					return err
				}
				ref, err := app.Recurring.Export(ctx, userID, exporter)
				if err != nil {
					return err
				}
				cmd.Printf("Exported to %s\n", ref)
				return nil
			})
		},
	}
}
