package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finclient/internal/core"
	"finclient/internal/services"
)

func newRecurringCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"upcoming"},
		Short:   "Show this month's upcoming recurring charges",
		Long: `Lists the recurring expenses that charge in the current month, soonest first,
with a per-category summary. Results are cached for CACHE_TTL; --refresh fetches anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, app *App, userID string) error {
				load := app.Recurring.Upcoming
				if refresh {
					load = app.Recurring.Refresh
				}
				up, err := load(ctx, userID)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), up)
				}
				printUpcoming(cmd.OutOrStdout(), up, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached result and fetch")

	cmd.AddCommand(newRecurringAddCmd(opts), newRecurringDeleteCmd(opts))
	return cmd
}

func newRecurringAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		amount      string
		startDate   string
		day         int
		categoryID  int64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recurring expense",
		Example: `  finclient recurring add --description Rent --amount 950 --start 2024-01-01 --day 1
  finclient recurring add --description Gym --amount 39,90 --start 2024-02-10 --category 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			re := core.RecurringExpense{
				Description: description,
				Amount:      amt,
				StartDate:   startDate,
				CategoryID:  optionalID(categoryID),
			}
			if day != 0 {
				re.DayOfMonth = &day
			}
			if err := re.Validate(); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, app *App, userID string) error {
				created, err := app.Recurring.Create(ctx, userID, re)
				if err != nil {
					return err
				}
				cmd.Printf("Created recurring expense %d\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what the charge is for")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50 or 12,50")
	cmd.Flags().StringVar(&startDate, "start", time.Now().Format(core.DateLayout), "first charge date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&day, "day", 0, "day of month the charge recurs on (1-31)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "expense category id")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newRecurringDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, app *App, userID string) error {
				if err := app.Recurring.Delete(ctx, userID, id); err != nil {
					return err
				}
				cmd.Printf("Deleted recurring expense %d\n", id)
				return nil
			})
		},
	}
}

// printUpcoming renders the charges table followed by the month summary.
func printUpcoming(w io.Writer, up services.Upcoming, now time.Time) {
	if up.Failed {
		fmt.Fprintln(w, "Could not load recurring expenses. Try again with --refresh.")
		return
	}
	if len(up.Charges) == 0 {
		fmt.Fprintln(w, "No recurring charges left this month.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tACCOUNT\tAMOUNT")
	for _, c := range up.Charges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.NextChargeDate,
			c.Description,
			categoryLabel(c.Category),
			c.Account.Name,
			core.FormatAmount(core.Magnitude(c.Amount)))
	}
	tw.Flush()

	overview := services.Summarize(up.Charges, now)
	fmt.Fprintf(w, "\nTotal %04d-%02d: %s\n", overview.Year, overview.Month, core.FormatAmount(overview.Total))
	for _, ca := range overview.ByCategory {
		fmt.Fprintf(w, "  %-20s %s\n", ca.Name, core.FormatAmount(ca.Amount))
	}
	if up.FromCache {
		fmt.Fprintf(w, "\n(cached %s)\n", up.FetchedAt.Format(time.Kitchen))
	}
}
