package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in with a one-time code",
		Long: `Without --code, asks the server to email a one-time code.
With --code, exchanges the code for a session that later commands reuse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				if code == "" {
					if err := app.Auth.RequestCode(ctx, email); err != nil {
						return err
					}
					cmd.Printf("Code sent to %s. Run 'finclient login %s --code <code>' to finish.\n", email, email)
					return nil
				}

				session, err := app.Auth.Verify(ctx, email, strings.TrimSpace(code))
				if err != nil {
					return err
				}
				cmd.Printf("Signed in as %s\n", displayUser(session.Email, email))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "one-time code received by email")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				if err := app.Auth.Logout(ctx); err != nil {
					return err
				}
				cmd.Println("Signed out")
				return nil
			})
		},
	}
}

func displayUser(sessionEmail, fallback string) string {
	if sessionEmail != "" {
		return sessionEmail
	}
	return fallback
}
