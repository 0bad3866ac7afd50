package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"finclient/internal/amqp"
)

func newNotificationsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "Follow notifications published to the message broker",
		Long:  "Prints notifications from AMQP_QUEUE as they arrive until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				broker, err := app.Broker()
				if err != nil {
					return err
				}
				err = broker.ConsumeNotifications(ctx, func(msg *amqp.NotificationMessage) error {
					if opts.jsonOutput {
						return writeJSON(cmd.OutOrStdout(), msg)
					}
					cmd.Printf("%s [%s] %s: %s\n",
						msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Level, msg.Title, msg.Message)
					return nil
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
