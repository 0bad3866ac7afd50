package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"finclient/internal/core"
)

const (
	recurringPath  = "/recurring_expenses"
	categoriesPath = "/expense_categories"
)

// ListRecurringExpenses returns the user's recurring expenses in canonical
// form.
func (c *Client) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	raw, err := c.do(ctx, http.MethodGet, recurringPath, nil, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList[recurringRecord](raw)
	if err != nil {
		return nil, decodeError(http.MethodGet, recurringPath, err)
	}
	return mapSlice(records, normalizeRecurring), nil
}

func (c *Client) CreateRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("validate recurring expense: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, recurringPath, nil, newRecurringPayload(re))
	if err != nil {
		return core.RecurringExpense{}, err
	}
	rec, err := decodeItem[recurringRecord](raw)
	if err != nil {
		return core.RecurringExpense{}, decodeError(http.MethodPost, recurringPath, err)
	}
	return normalizeRecurring(rec), nil
}

func (c *Client) UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if re.ID == 0 {
		return core.RecurringExpense{}, errors.New("recurring expense id is required")
	}
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("validate recurring expense: %w", err)
	}
	path := fmt.Sprintf("%s/%d", recurringPath, re.ID)
	raw, err := c.do(ctx, http.MethodPut, path, nil, newRecurringPayload(re))
	if err != nil {
		return core.RecurringExpense{}, err
	}
	rec, err := decodeItem[recurringRecord](raw)
	if err != nil {
		return core.RecurringExpense{}, decodeError(http.MethodPut, path, err)
	}
	return normalizeRecurring(rec), nil
}

func (c *Client) DeleteRecurringExpense(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", recurringPath, id), nil, nil)
	return err
}

// ListCategories returns the expense categories with their ids normalized.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	raw, err := c.do(ctx, http.MethodGet, categoriesPath, nil, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList[categoryRecord](raw)
	if err != nil {
		return nil, decodeError(http.MethodGet, categoriesPath, err)
	}
	return mapSlice(records, normalizeCategory), nil
}
