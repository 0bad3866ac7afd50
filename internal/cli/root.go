package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"finclient/internal/config"
	"finclient/internal/core"
)

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	apiURL       string
	logLevel     string
	cacheBackend string
	jsonOutput   bool
}

// NewRootCmd creates the finclient command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "finclient",
		Short:         "Personal finance client",
		Long:          "finclient talks to the personal finance API: upcoming recurring charges, transactions, goals and exports.",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.cacheBackend, "cache-backend", "", "cache backend: sqlite or memory (overrides CACHE_BACKEND)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newRecurringCmd(opts),
		newTransactionsCmd(opts),
		newGoalsCmd(opts),
		newCategoriesCmd(opts),
		newParseCmd(opts),
		newExportCmd(opts),
		newNotificationsCmd(opts),
	)

	return cmd
}

const rootCmdExample = `  # Sign in with a one-time code
  finclient login me@example.com
  finclient login me@example.com --code 123456

  # Show this month's upcoming recurring charges
  finclient recurring
  finclient recurring --refresh

  # List transactions of a month
  finclient transactions --month 2024-03

  # Export upcoming charges to the configured spreadsheet
  finclient export`

// overrides applies the persistent flags on top of the environment.
func (o *rootOptions) overrides(cfg *config.Config) {
	if o.apiURL != "" {
		cfg.APIBaseURL = o.apiURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.cacheBackend != "" {
		cfg.CacheBackend = o.cacheBackend
	}
}

// withApp builds an App for the duration of fn and closes it afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(o.overrides)
	if err != nil {
		return err
	}

	logger, err := SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := SignalContext(parent, logger)
	defer cancel()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Warn("Failed to close resources", "error", cerr)
		}
	}()

	return fn(ctx, app)
}

// withSession is withApp for commands that need a signed-in user.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(ctx context.Context, app *App, userID string) error) error {
	return o.withApp(cmd, func(ctx context.Context, app *App) error {
		session, err := app.Session(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, app, session.UserID)
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// optionalID turns a zero flag value into nil.
func optionalID(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func categoryLabel(c *core.Category) string {
	if c == nil || c.Name == "" {
		return "-"
	}
	return c.Name
}
