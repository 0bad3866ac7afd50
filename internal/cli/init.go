// Package cli wires configuration, storage and services together and
// exposes them as finclient commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finclient/internal/backend"
	"finclient/internal/config"
	flog "finclient/internal/log"
)

// SetupLogger builds the process logger at the configured level, writing
// to w, and installs it as the slog default.
func SetupLogger(level string, w io.Writer) (*flog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := flog.DefaultConfig()
	cfg.Level = lvl
	if w != nil {
		cfg.Output = w
	}
	logger := flog.New(cfg)
	flog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment, applies
// the overrides in order and validates the result.
func LoadAndValidateConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitStore opens the cache backend selected by cfg.
func InitStore(ctx context.Context, logger *flog.Logger, cfg *config.Config) (*backend.StoreResult, error) {
	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateStore(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", storeCfg.Type)
		return nil, err
	}
	return result, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *flog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
