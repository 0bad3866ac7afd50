package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"finclient/internal/core"
)

func newParseCmd(opts *rootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "parse TEXT...",
		Short: "Turn a free-text note into a transaction",
		Example: `  finclient parse "coffee 3,20 yesterday"
  finclient parse --save lunch with team 24.50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				tx, err := app.API.ParseExpense(ctx, text)
				if err != nil {
					return err
				}
				if save {
					if tx, err = app.API.CreateTransaction(ctx, tx); err != nil {
						return err
					}
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), tx)
				}
				printTransactions(cmd.OutOrStdout(), []core.Transaction{tx})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "record the parsed transaction")
	return cmd
}
