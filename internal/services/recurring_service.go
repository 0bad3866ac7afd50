package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"finclient/internal/cache"
	"finclient/internal/core"
	flog "finclient/internal/log"
)

// RecurringCachePrefix namespaces the upcoming charges slots in the store.
const RecurringCachePrefix = "recurring"

// RecurringSource reads the data an upcoming charges cycle is built from.
type RecurringSource interface {
	ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// RecurringWriter changes recurring expenses on the server.
type RecurringWriter interface {
	CreateRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	DeleteRecurringExpense(ctx context.Context, id int64) error
}

// RecurringAPI is the part of the API client the service needs.
type RecurringAPI interface {
	RecurringSource
	RecurringWriter
}

// Upcoming is the result of one cycle.
type Upcoming struct {
	Charges   []core.EnrichedRecurringExpense
	FetchedAt time.Time
	FromCache bool
	// Failed is set when the fetch failed and the cycle degraded to no data.
	Failed bool
}

type RecurringConfig struct {
	TTL      time.Duration
	Now      func() time.Time
	Resolver *NextChargeResolver
	Logger   *slog.Logger
}

// RecurringService builds the "upcoming charges this month" view and keeps
// it in a per-user ResultCache.
type RecurringService struct {
	api      RecurringAPI
	cache    *cache.ResultCache[[]core.EnrichedRecurringExpense]
	resolver *NextChargeResolver
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

func NewRecurringService(api RecurringAPI, store cache.Store, notifier Notifier, cfg RecurringConfig) *RecurringService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewNextChargeResolver()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(cfg.Logger)
	}
	return &RecurringService{
		api: api,
		cache: cache.NewResultCache[[]core.EnrichedRecurringExpense](store, cache.ResultCacheConfig{
			Prefix: RecurringCachePrefix,
			TTL:    cfg.TTL,
			Now:    cfg.Now,
			Logger: cfg.Logger,
		}),
		resolver: cfg.Resolver,
		notifier: notifier,
		now:      cfg.Now,
		logger:   cfg.Logger.With(flog.FieldComponent, flog.ComponentRecurring),
	}
}

// Upcoming returns the user's charges for the current month, from the cache
// when it is fresh.
func (s *RecurringService) Upcoming(ctx context.Context, userID string) (Upcoming, error) {
	res, err := s.cache.LoadOrFetch(ctx, userID, s.fetchAndEnrich)
	return s.finish(ctx, userID, res, err)
}

// Refresh ignores the cached entry and fetches.
func (s *RecurringService) Refresh(ctx context.Context, userID string) (Upcoming, error) {
	s.logger.DebugContext(ctx, "Refreshing recurring expenses", flog.FieldUserID, userID, flog.FieldOperation, flog.OpRefresh)
	res, err := s.cache.ForceRefresh(ctx, userID, s.fetchAndEnrich)
	return s.finish(ctx, userID, res, err)
}

// Invalidate drops the user's cached charges.
func (s *RecurringService) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Invalidate(ctx, userID)
}

// finish turns a failed fetch into an empty, notified cycle. Missing user
// and superseded results are returned as errors.
func (s *RecurringService) finish(ctx context.Context, userID string, res cache.Result[[]core.EnrichedRecurringExpense], err error) (Upcoming, error) {
	switch {
	case err == nil:
		charges := res.Data
		if charges == nil {
			charges = []core.EnrichedRecurringExpense{}
		}
		return Upcoming{Charges: charges, FetchedAt: res.FetchedAt, FromCache: res.FromCache}, nil
	case errors.Is(err, cache.ErrMissingUser), errors.Is(err, cache.ErrSuperseded):
		return Upcoming{}, err
	}

	s.logger.ErrorContext(ctx, "Failed to load recurring expenses",
		flog.FieldUserID, userID,
		flog.FieldError, err)

	note := core.Notification{
		UserID:  userID,
		Level:   core.NotificationError,
		Title:   "Could not load recurring expenses",
		Message: err.Error(),
		Time:    s.now(),
	}
	if nerr := s.notifier.Notify(ctx, note); nerr != nil {
		s.logger.WarnContext(ctx, "Failed to deliver notification", flog.FieldError, nerr)
	}

	return Upcoming{Charges: []core.EnrichedRecurringExpense{}, Failed: true}, nil
}

// fetchAndEnrich loads recurring expenses and categories concurrently and
// enriches the records. Any failure fails the whole cycle.
func (s *RecurringService) fetchAndEnrich(ctx context.Context) ([]core.EnrichedRecurringExpense, error) {
	var (
		records    []core.RecurringExpense
		categories []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.api.ListRecurringExpenses(gctx)
		if err != nil {
			return fmt.Errorf("list recurring expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := Enrich(records, categories, s.resolver, s.now())
	s.logger.InfoContext(ctx, "Recurring expenses enriched",
		"total", len(records),
		"this_month", len(out))
	return out, nil
}

// Enrich resolves each record's next charge date, joins its category and
// account, and keeps only the charges falling in now's calendar month. The
// result is ordered by date.
func Enrich(records []core.RecurringExpense, categories []core.Category, resolver *NextChargeResolver, now time.Time) []core.EnrichedRecurringExpense {
	if resolver == nil {
		resolver = NewNextChargeResolver()
	}

	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]core.EnrichedRecurringExpense, 0, len(records))
	for _, re := range records {
		re.NextChargeDate = resolver.Resolve(re, now)
		if !InCurrentMonth(re.NextChargeDate, now) {
			continue
		}

		e := core.EnrichedRecurringExpense{
			RecurringExpense: re,
			Account:          core.AccountFor(re.ExpenseableType, re.ExpenseableID),
		}
		if re.CategoryID != nil {
			if c, ok := byID[*re.CategoryID]; ok {
				e.Category = &c
			}
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextChargeDate < out[j].NextChargeDate
	})
	return out
}

// Create stores a new recurring expense and drops the user's cached view.
func (s *RecurringService) Create(ctx context.Context, userID string, re core.RecurringExpense) (core.RecurringExpense, error) {
	created, err := s.api.CreateRecurringExpense(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense: %w", err)
	}
	s.invalidateAfterMutation(ctx, userID, flog.OpCreate)
	return created, nil
}

func (s *RecurringService) Update(ctx context.Context, userID string, re core.RecurringExpense) (core.RecurringExpense, error) {
	updated, err := s.api.UpdateRecurringExpense(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense %d: %w", re.ID, err)
	}
	s.invalidateAfterMutation(ctx, userID, flog.OpUpdate)
	return updated, nil
}

func (s *RecurringService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.api.DeleteRecurringExpense(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense %d: %w", id, err)
	}
	s.invalidateAfterMutation(ctx, userID, flog.OpDelete)
	return nil
}

func (s *RecurringService) invalidateAfterMutation(ctx context.Context, userID, op string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cached charges",
			flog.FieldUserID, userID,
			flog.FieldOperation, op,
			flog.FieldError, err)
	}
}
