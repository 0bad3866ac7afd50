package services

import (
	"testing"
	"time"

	"finclient/internal/core"
)

func intPtr(v int) *int { return &v }

func TestResolveNextChargeDate(t *testing.T) {
	tests := []struct {
		name string
		re   core.RecurringExpense
		now  time.Time
		want string
	}{
		{
			name: "explicit next charge date is returned unchanged",
			re:   core.RecurringExpense{NextChargeDate: "2024-09-02", DayOfMonth: intPtr(20), StartDate: "2023-01-11"},
			now:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			want: "2024-09-02",
		},
		{
			name: "explicit timestamp is cut to its date",
			re:   core.RecurringExpense{NextChargeDate: "2024-03-21T00:00:00Z"},
			now:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			want: "2024-03-21",
		},
		{
			name: "invalid explicit date falls through to day of month",
			re:   core.RecurringExpense{NextChargeDate: "soon", DayOfMonth: intPtr(15)},
			now:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			want: "2024-03-15",
		},
		{
			name: "day of month still ahead this month",
			re:   core.RecurringExpense{DayOfMonth: intPtr(15)},
			now:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			want: "2024-03-15",
		},
		{
			name: "day of month already passed moves to next month",
			re:   core.RecurringExpense{DayOfMonth: intPtr(5)},
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: "2024-04-05",
		},
		{
			name: "day of month equal to today moves to next month",
			re:   core.RecurringExpense{DayOfMonth: intPtr(20)},
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: "2024-04-20",
		},
		{
			name: "december rolls into january of next year",
			re:   core.RecurringExpense{DayOfMonth: intPtr(1)},
			now:  time.Date(2024, 12, 5, 12, 0, 0, 0, time.UTC),
			want: "2025-01-01",
		},
		{
			name: "day 31 in a 30 day month overflows",
			re:   core.RecurringExpense{DayOfMonth: intPtr(31)},
			now:  time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC),
			want: "2024-05-01",
		},
		{
			name: "out of range day of month falls through to start date",
			re:   core.RecurringExpense{DayOfMonth: intPtr(0), StartDate: "2023-07-09"},
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: "2024-03-09",
		},
		{
			name: "start date day in current month",
			re:   core.RecurringExpense{StartDate: "2023-11-03"},
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: "2024-03-03",
		},
		{
			name: "invalid start date falls back to the 15th",
			re:   core.RecurringExpense{StartDate: "last tuesday"},
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: "2024-03-15",
		},
		{
			name: "no signal falls back to the 15th",
			re:   core.RecurringExpense{},
			now:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want: "2024-03-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveNextChargeDate(tt.re, tt.now)
			if got != tt.want {
				t.Errorf("ResolveNextChargeDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveAlwaysReturnsValidDate(t *testing.T) {
	now := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
	records := []core.RecurringExpense{
		{},
		{NextChargeDate: "garbage"},
		{DayOfMonth: intPtr(-3)},
		{DayOfMonth: intPtr(99), StartDate: "x"},
		{StartDate: "2024-01-31"},
	}
	for i, re := range records {
		got := ResolveNextChargeDate(re, now)
		if _, err := core.ParseDate(got); err != nil || len(got) != len(core.DateLayout) {
			t.Errorf("record %d resolved to invalid date %q", i, got)
		}
	}
}

type noAnswerStrategy struct{}

func (noAnswerStrategy) NextCharge(core.RecurringExpense, time.Time) (string, bool) { return "", false }

func TestResolverCustomChainStillFallsBack(t *testing.T) {
	r := NewNextChargeResolver(noAnswerStrategy{})
	got := r.Resolve(core.RecurringExpense{DayOfMonth: intPtr(3)}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if got != "2024-06-15" {
		t.Errorf("Resolve() = %v, want 2024-06-15", got)
	}
}

func TestInCurrentMonth(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		date string
		want bool
	}{
		{"2024-03-01", true},
		{"2024-03-31", true},
		{"2024-04-05", false},
		{"2023-03-15", false},
		{"bad", false},
	}
	for _, tt := range tests {
		if got := InCurrentMonth(tt.date, now); got != tt.want {
			t.Errorf("InCurrentMonth(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}
