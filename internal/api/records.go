package api

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"finclient/internal/core"
)

// recurringRecord is a recurring expense as the API sends it. The day of
// month arrives under either of two names and ids may be strings.
type recurringRecord struct {
	ID              json.RawMessage `json:"id"`
	Description     string          `json:"description"`
	Amount          json.RawMessage `json:"amount"`
	StartDate       string          `json:"start_date"`
	NextChargeDate  string          `json:"next_charge_date"`
	CreateOnDom     json.RawMessage `json:"createOnDom"`
	CreateOnDomAlt  json.RawMessage `json:"create_on_dom"`
	CategoryID      json.RawMessage `json:"expense_category_id"`
	ExpenseableType string          `json:"expenseable_type"`
	ExpenseableID   json.RawMessage `json:"expenseable_id"`
}

// normalizeRecurring is the only place that knows about the field name
// variants of recurringRecord.
func normalizeRecurring(r recurringRecord) core.RecurringExpense {
	re := core.RecurringExpense{
		ID:              intValue(r.ID),
		Description:     strings.TrimSpace(r.Description),
		Amount:          amountValue(r.Amount, "amount"),
		StartDate:       strings.TrimSpace(r.StartDate),
		NextChargeDate:  strings.TrimSpace(r.NextChargeDate),
		CategoryID:      optionalInt(r.CategoryID),
		ExpenseableType: strings.TrimSpace(r.ExpenseableType),
		ExpenseableID:   optionalInt(r.ExpenseableID),
	}

	re.DayOfMonth = dayOfMonth(optionalInt(r.CreateOnDom), optionalInt(r.CreateOnDomAlt))
	return re
}

// dayOfMonth prefers the first candidate inside 1..31, then the second. An
// out of range value is kept only when neither is usable, and the resolver
// then skips it.
func dayOfMonth(candidates ...*int64) *int {
	var fallback *int64
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if *c >= 1 && *c <= 31 {
			d := int(*c)
			return &d
		}
		if fallback == nil {
			fallback = c
		}
	}
	if fallback == nil {
		return nil
	}
	d := int(*fallback)
	return &d
}

// recurringPayload is the body of create and update requests.
type recurringPayload struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	StartDate       string          `json:"start_date"`
	NextChargeDate  string          `json:"next_charge_date,omitempty"`
	CreateOnDom     *int            `json:"create_on_dom,omitempty"`
	CategoryID      *int64          `json:"expense_category_id,omitempty"`
	ExpenseableType string          `json:"expenseable_type,omitempty"`
	ExpenseableID   *int64          `json:"expenseable_id,omitempty"`
}

func newRecurringPayload(re core.RecurringExpense) recurringPayload {
	return recurringPayload{
		Description:     re.Description,
		Amount:          re.Amount,
		StartDate:       re.StartDate,
		NextChargeDate:  re.NextChargeDate,
		CreateOnDom:     re.DayOfMonth,
		CategoryID:      re.CategoryID,
		ExpenseableType: re.ExpenseableType,
		ExpenseableID:   re.ExpenseableID,
	}
}

// categoryRecord carries its id under id or category_id.
type categoryRecord struct {
	ID         json.RawMessage `json:"id"`
	CategoryID json.RawMessage `json:"category_id"`
	Name       string          `json:"name"`
	Icon       string          `json:"icon"`
	Color      string          `json:"color"`
}

func normalizeCategory(r categoryRecord) core.Category {
	id := optionalInt(r.ID)
	if id == nil {
		id = optionalInt(r.CategoryID)
	}
	c := core.Category{
		Name:  strings.TrimSpace(r.Name),
		Icon:  r.Icon,
		Color: r.Color,
	}
	if id != nil {
		c.ID = *id
	}
	return c
}

type transactionRecord struct {
	ID              json.RawMessage `json:"id"`
	Description     string          `json:"description"`
	Amount          json.RawMessage `json:"amount"`
	Date            string          `json:"date"`
	CategoryID      json.RawMessage `json:"expense_category_id"`
	ExpenseableType string          `json:"expenseable_type"`
	ExpenseableID   json.RawMessage `json:"expenseable_id"`
}

func normalizeTransaction(r transactionRecord) core.Transaction {
	return core.Transaction{
		ID:              intValue(r.ID),
		Description:     strings.TrimSpace(r.Description),
		Amount:          amountValue(r.Amount, "amount"),
		Date:            strings.TrimSpace(r.Date),
		CategoryID:      optionalInt(r.CategoryID),
		ExpenseableType: strings.TrimSpace(r.ExpenseableType),
		ExpenseableID:   optionalInt(r.ExpenseableID),
	}
}

type goalRecord struct {
	ID            json.RawMessage `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  json.RawMessage `json:"target_amount"`
	CurrentAmount json.RawMessage `json:"current_amount"`
	Deadline      string          `json:"deadline"`
	CategoryID    json.RawMessage `json:"expense_category_id"`
}

func normalizeGoal(r goalRecord) core.Goal {
	return core.Goal{
		ID:            intValue(r.ID),
		Name:          strings.TrimSpace(r.Name),
		TargetAmount:  amountValue(r.TargetAmount, "target_amount"),
		CurrentAmount: amountValue(r.CurrentAmount, "current_amount"),
		Deadline:      strings.TrimSpace(r.Deadline),
		CategoryID:    optionalInt(r.CategoryID),
	}
}

func mapSlice[In, Out any](in []In, f func(In) Out) []Out {
	out := make([]Out, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
