package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"finclient/internal/core"
	flog "finclient/internal/log"
)

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(ctx context.Context, n core.Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(flog.FieldComponent, flog.ComponentNotify)}
}

func (n *LogNotifier) Notify(ctx context.Context, note core.Notification) error {
	level := slog.LevelInfo
	if note.Level == core.NotificationError {
		level = slog.LevelError
	}
	n.logger.Log(ctx, level, note.Title,
		flog.FieldUserID, note.UserID,
		"message", note.Message)
	return nil
}

// MemoryNotifier keeps notifications in memory until drained.
type MemoryNotifier struct {
	mu    sync.Mutex
	items []core.Notification
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) Notify(_ context.Context, note core.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, note)
	return nil
}

// Drain returns the pending notifications and forgets them.
func (n *MemoryNotifier) Drain() []core.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

// MultiNotifier fans a notification out to every notifier. All of them are
// tried; their errors are joined.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, note core.Notification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
