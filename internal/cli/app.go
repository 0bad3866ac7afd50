package cli

import (
	"context"
	"errors"
	"fmt"

	"finclient/internal/amqp"
	"finclient/internal/api"
	"finclient/internal/backend"
	"finclient/internal/config"
	flog "finclient/internal/log"
	"finclient/internal/services"
	"finclient/internal/sheets"
	"finclient/internal/sheets/google"
	"finclient/internal/sheets/memory"
)

// App holds the services one command invocation works with.
type App struct {
	Config    *config.Config
	Logger    *flog.Logger
	API       *api.Client
	Store     *backend.StoreResult
	Auth      *services.AuthService
	Recurring *services.RecurringService
	Notifier  services.Notifier

	broker *amqp.Client
}

// NewApp opens the store, builds the API client and services and connects
// to the broker when one is configured. An unreachable broker only drops
// broker notifications.
func NewApp(ctx context.Context, cfg *config.Config, logger *flog.Logger) (*App, error) {
	store, err := InitStore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIBaseURL, cfg.APITimeout,
		api.WithLogger(logger.WithComponent(flog.ComponentAPI).Logger))
	if err != nil {
		_ = store.Cleanup()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		API:    client,
		Store:  store,
	}

	notifiers := services.MultiNotifier{services.NewLogNotifier(logger.Logger)}
	if cfg.AMQPURL != "" {
		broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Broker unavailable, notifications are only logged",
				flog.FieldComponent, flog.ComponentAMQP,
				flog.FieldError, err)
		} else {
			app.broker = broker
			notifiers = append(notifiers, broker)
		}
	}
	app.Notifier = notifiers

	app.Recurring = services.NewRecurringService(client, store.Store, app.Notifier, services.RecurringConfig{
		TTL:    cfg.CacheTTL,
		Logger: logger.Logger,
	})
	app.Auth = services.NewAuthService(client, store.Store, logger.Logger)
	app.Auth.OnLogout(app.Recurring.Invalidate)

	return app, nil
}

// Session returns the signed-in session with its token installed on the
// API client.
func (a *App) Session(ctx context.Context) (api.Session, error) {
	session, err := a.Auth.Current(ctx)
	if errors.Is(err, api.ErrNoSession) {
		return api.Session{}, errors.New("not signed in, run 'finclient login' first")
	}
	return session, err
}

// Exporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory one otherwise.
func (a *App) Exporter(ctx context.Context) (sheets.ChargeExporter, error) {
	if !a.Config.ExportEnabled() {
		return memory.New(), nil
	}
	exp, err := google.New(ctx, google.Config{
		SpreadsheetID:      a.Config.GoogleSpreadsheetID,
		SheetName:          a.Config.GoogleSheetName,
		ServiceAccountJSON: a.Config.GoogleServiceAccountJSON,
		ServiceAccountFile: a.Config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("create sheets exporter: %w", err)
	}
	return exp, nil
}

// Broker returns the AMQP client, or an error when none is connected.
func (a *App) Broker() (*amqp.Client, error) {
	if a.broker == nil {
		return nil, errors.New("no message broker connected, set AMQP_URL")
	}
	return a.broker, nil
}

func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
	}
	if a.Store != nil && a.Store.Cleanup != nil {
		errs = append(errs, a.Store.Cleanup())
	}
	return errors.Join(errs...)
}
