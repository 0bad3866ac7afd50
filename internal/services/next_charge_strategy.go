// Package services provides business logic and orchestration services.
//
// This file implements the next charge date resolution for recurring
// expenses. Each strategy encapsulates one source of the date; the resolver
// tries them in order and the first one with a usable signal wins.

package services

import (
	"time"

	"finclient/internal/core"
)

// fallbackDay is used when a record carries no usable date signal at all.
const fallbackDay = 15

// NextChargeStrategy derives a next charge date from one signal of a
// recurring expense.
type NextChargeStrategy interface {
	// NextCharge returns the date as YYYY-MM-DD, or false when the record
	// lacks the signal this strategy relies on.
	NextCharge(re core.RecurringExpense, now time.Time) (string, bool)
}

// ExplicitDateStrategy uses the next charge date sent by the API.
type ExplicitDateStrategy struct{}

// NextCharge returns the explicit date unmodified. Full timestamps are cut
// to their calendar date; unparseable values are ignored.
func (ExplicitDateStrategy) NextCharge(re core.RecurringExpense, _ time.Time) (string, bool) {
	if re.NextChargeDate == "" {
		return "", false
	}
	d, err := core.ParseDate(re.NextChargeDate)
	if err != nil {
		return "", false
	}
	if len(re.NextChargeDate) == len(core.DateLayout) {
		return re.NextChargeDate, true
	}
	return d.String(), true
}

// DayOfMonthStrategy uses the day of month on which the expense recurs.
type DayOfMonthStrategy struct{}

// NextCharge returns that day in the current month, or in the following
// month when the day has already come this month. Days missing from the
// target month roll over into the next one.
func (DayOfMonthStrategy) NextCharge(re core.RecurringExpense, now time.Time) (string, bool) {
	if re.DayOfMonth == nil {
		return "", false
	}
	dom := *re.DayOfMonth
	if dom < 1 || dom > 31 {
		return "", false
	}

	month := int(now.Month())
	if dom <= now.Day() {
		month++
	}
	return core.NewDate(now.Year(), month, dom).String(), true
}

// StartDateStrategy uses the day of month of the first occurrence.
type StartDateStrategy struct{}

// NextCharge returns the start date's day in the current month.
func (StartDateStrategy) NextCharge(re core.RecurringExpense, now time.Time) (string, bool) {
	start, err := core.ParseDate(re.StartDate)
	if err != nil {
		return "", false
	}
	return core.NewDate(now.Year(), int(now.Month()), start.Day()).String(), true
}

// FallbackStrategy always answers with the 15th of the current month.
type FallbackStrategy struct{}

func (FallbackStrategy) NextCharge(_ core.RecurringExpense, now time.Time) (string, bool) {
	return core.NewDate(now.Year(), int(now.Month()), fallbackDay).String(), true
}

// DefaultNextChargeStrategies returns the resolution chain in priority order.
func DefaultNextChargeStrategies() []NextChargeStrategy {
	return []NextChargeStrategy{
		ExplicitDateStrategy{},
		DayOfMonthStrategy{},
		StartDateStrategy{},
		FallbackStrategy{},
	}
}

// NextChargeResolver runs a chain of strategies.
type NextChargeResolver struct {
	strategies []NextChargeStrategy
}

// NewNextChargeResolver creates a resolver over the given chain, or over the
// default chain when none is given.
func NewNextChargeResolver(strategies ...NextChargeStrategy) *NextChargeResolver {
	if len(strategies) == 0 {
		strategies = DefaultNextChargeStrategies()
	}
	return &NextChargeResolver{strategies: strategies}
}

// Resolve returns the next charge date of re as YYYY-MM-DD. It never returns
// an empty or invalid date: if no strategy in the chain answers, the
// fallback day is used.
func (r *NextChargeResolver) Resolve(re core.RecurringExpense, now time.Time) string {
	for _, s := range r.strategies {
		if date, ok := s.NextCharge(re, now); ok {
			return date
		}
	}
	date, _ := FallbackStrategy{}.NextCharge(re, now)
	return date
}

// ResolveNextChargeDate resolves with the default chain.
func ResolveNextChargeDate(re core.RecurringExpense, now time.Time) string {
	return NewNextChargeResolver().Resolve(re, now)
}

// InCurrentMonth reports whether a resolved date falls in the calendar month
// and year of now.
func InCurrentMonth(date string, now time.Time) bool {
	d, err := core.ParseDate(date)
	if err != nil {
		return false
	}
	return d.SameMonth(now)
}
