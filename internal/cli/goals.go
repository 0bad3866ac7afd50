package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finclient/internal/core"
)

func newGoalsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List spending goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				goals, err := app.API.ListGoals(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), goals)
				}
				printGoals(cmd.OutOrStdout(), goals)
				return nil
			})
		},
	}
	cmd.AddCommand(newGoalAddCmd(opts), newGoalDeleteCmd(opts))
	return cmd
}

func newGoalAddCmd(opts *rootOptions) *cobra.Command {
	var (
		name       string
		target     string
		deadline   string
		categoryID int64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a spending goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(target)
			if err != nil {
				return fmt.Errorf("target %q: %w", target, err)
			}
			g := core.Goal{
				Name:          name,
				TargetAmount:  amt,
				CurrentAmount: decimal.Zero,
				Deadline:      deadline,
				CategoryID:    optionalID(categoryID),
			}
			if err := g.Validate(); err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				created, err := app.API.CreateGoal(ctx, g)
				if err != nil {
					return err
				}
				cmd.Printf("Created goal %d\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "goal name")
	cmd.Flags().StringVar(&target, "target", "", "target amount")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "expense category id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newGoalDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a spending goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, app *App, _ string) error {
				if err := app.API.DeleteGoal(ctx, id); err != nil {
					return err
				}
				cmd.Printf("Deleted goal %d\n", id)
				return nil
			})
		},
	}
}

func printGoals(w io.Writer, goals []core.Goal) {
	if len(goals) == 0 {
		fmt.Fprintln(w, "No goals.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROGRESS\tTARGET\tDEADLINE")
	for _, g := range goals {
		deadline := g.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%3.0f%%\t%s\t%s\n",
			g.ID, g.Name, g.Progress()*100, core.FormatAmount(g.TargetAmount), deadline)
	}
	tw.Flush()
}
