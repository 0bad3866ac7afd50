package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format exchanged with the API.
const DateLayout = "2006-01-02"

const (
	AccountBank       AccountType = "bank"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountOther      AccountType = "other"
)

type (
	AccountType string

	Date struct {
		time.Time
	}

	Category struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
	}

	Account struct {
		ID   int64       `json:"id"`
		Name string      `json:"name"`
		Type AccountType `json:"type"`
	}

	// RecurringExpense is the canonical shape of a recurring expense after
	// normalization at the API boundary. Dates are kept verbatim.
	RecurringExpense struct {
		ID              int64           `json:"id"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		StartDate       string          `json:"start_date,omitempty"`
		NextChargeDate  string          `json:"next_charge_date,omitempty"`
		DayOfMonth      *int            `json:"day_of_month,omitempty"`
		CategoryID      *int64          `json:"expense_category_id,omitempty"`
		ExpenseableType string          `json:"expenseable_type,omitempty"`
		ExpenseableID   *int64          `json:"expenseable_id,omitempty"`
	}

	// EnrichedRecurringExpense is a recurring expense with a resolved
	// NextChargeDate and its joined display data.
	EnrichedRecurringExpense struct {
		RecurringExpense
		Category *Category `json:"category,omitempty"`
		Account  Account   `json:"account"`
	}

	Transaction struct {
		ID              int64           `json:"id,omitempty"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Date            string          `json:"date"`
		CategoryID      *int64          `json:"expense_category_id,omitempty"`
		ExpenseableType string          `json:"expenseable_type,omitempty"`
		ExpenseableID   *int64          `json:"expenseable_id,omitempty"`
	}

	// Goal is a spending goal tracked against a category.
	Goal struct {
		ID            int64           `json:"id,omitempty"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"target_amount"`
		CurrentAmount decimal.Decimal `json:"current_amount"`
		Deadline      string          `json:"deadline,omitempty"`
		CategoryID    *int64          `json:"expense_category_id,omitempty"`
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyName         = errors.New("empty name")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day. Out of range days roll
// over into the following month the way time.Date normalizes them.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a plain calendar date or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// SameMonth reports whether d falls in the calendar month and year of t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == t.Month()
}

func validateDescription(s string) error {
	if len(strings.TrimSpace(s)) == 0 {
		return ErrEmptyDescription
	}
	if len(s) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if err := validateDescription(re.Description); err != nil {
		return err
	}
	if re.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if _, err := ParseDate(re.StartDate); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if re.NextChargeDate != "" {
		if _, err := ParseDate(re.NextChargeDate); err != nil {
			return errors.New("invalid next charge date: " + err.Error())
		}
	}
	if re.DayOfMonth != nil && (*re.DayOfMonth < 1 || *re.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if g.Deadline != "" {
		if _, err := ParseDate(g.Deadline); err != nil {
			return errors.New("invalid deadline: " + err.Error())
		}
	}
	return nil
}

// Progress returns how much of the goal has been reached, in [0, 1].
func (g Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
