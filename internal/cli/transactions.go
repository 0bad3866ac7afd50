package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finclient/internal/api"
	"finclient/internal/core"
)

func newTransactionsCmd(opts *rootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List the transactions of a month",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, mon, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				txs, err := app.API.ListTransactions(ctx, year, mon)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), txs)
				}
				printTransactions(cmd.OutOrStdout(), txs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to list as YYYY-MM (default current month)")

	cmd.AddCommand(newTransactionAddCmd(opts), newTransactionDeleteCmd(opts))
	return cmd
}

func newTransactionAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		amount      string
		date        string
		categoryID  int64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long:  "Records a transaction. Without --category the server is asked to suggest one from the description.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			tx := core.Transaction{
				Description: description,
				Amount:      amt,
				Date:        date,
				CategoryID:  optionalID(categoryID),
			}
			if err := tx.Validate(); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				if tx.CategoryID == nil {
					suggested, err := app.API.SuggestCategory(ctx, tx.Description)
					switch {
					case err == nil:
						tx.CategoryID = &suggested
					case errors.Is(err, api.ErrNoSuggestion):
					default:
						app.Logger.Warn("Category suggestion failed", "error", err)
					}
				}

				created, err := app.API.CreateTransaction(ctx, tx)
				if err != nil {
					return err
				}
				cmd.Printf("Created transaction %d\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what the transaction was for")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50 or 12,50")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(core.DateLayout), "transaction date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "expense category id")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newTransactionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				if err := app.API.DeleteTransaction(ctx, id); err != nil {
					return err
				}
				cmd.Printf("Deleted transaction %d\n", id)
				return nil
			})
		},
	}
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List expense categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				cats, err := app.API.ListCategories(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), cats)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, c := range cats {
					fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
				}
				return tw.Flush()
			})
		},
	}
}

// parseMonth reads YYYY-MM, defaulting to the month of now.
func parseMonth(s string, now time.Time) (int, int, error) {
	if s == "" {
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}

func printTransactions(w io.Writer, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Date, t.Description, core.FormatAmount(t.Amount))
	}
	tw.Flush()
}
