package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finclient/internal/cache"
	flog "finclient/internal/log"
	"finclient/internal/storage"
)

const (
	defaultMaxEntries      = 100
	defaultRetention       = 24 * time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new store factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(flog.FieldComponent, flog.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*StoreResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite store", "db_path", config.SQLiteDBPath)

	return &StoreResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryStore(ctx context.Context, config Config) (*StoreResult, error) {
	maxEntries := config.MaxEntries
	if maxEntries == 0 {
		maxEntries = defaultMaxEntries
	}
	retention := config.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	store := cache.NewMemoryStore(maxEntries, retention)
	manager := cache.NewManager()
	manager.Register(store)
	manager.StartCleanup(interval)

	f.logger.InfoContext(ctx, "Initialized memory store",
		"max_entries", maxEntries,
		"retention", retention)

	return &StoreResult{
		Store: store,
		Cleanup: func() error {
			manager.Stop()
			return nil
		},
	}, nil
}
