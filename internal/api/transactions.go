package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"finclient/internal/core"
)

const transactionsPath = "/transactions"

type transactionPayload struct {
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	CategoryID      *int64 `json:"expense_category_id,omitempty"`
	ExpenseableType string `json:"expenseable_type,omitempty"`
	ExpenseableID   *int64 `json:"expenseable_id,omitempty"`
}

func newTransactionPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		Description:     t.Description,
		Amount:          core.FormatAmount(t.Amount),
		Date:            t.Date,
		CategoryID:      t.CategoryID,
		ExpenseableType: t.ExpenseableType,
		ExpenseableID:   t.ExpenseableID,
	}
}

// ListTransactions returns the transactions of one month.
func (c *Client) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	query := url.Values{"month": {fmt.Sprintf("%04d-%02d", year, month)}}
	raw, err := c.do(ctx, http.MethodGet, transactionsPath, query, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList[transactionRecord](raw)
	if err != nil {
		return nil, decodeError(http.MethodGet, transactionsPath, err)
	}
	return mapSlice(records, normalizeTransaction), nil
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, transactionsPath, nil, newTransactionPayload(t))
	if err != nil {
		return core.Transaction{}, err
	}
	rec, err := decodeItem[transactionRecord](raw)
	if err != nil {
		return core.Transaction{}, decodeError(http.MethodPost, transactionsPath, err)
	}
	return normalizeTransaction(rec), nil
}

func (c *Client) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == 0 {
		return core.Transaction{}, errors.New("transaction id is required")
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	path := fmt.Sprintf("%s/%d", transactionsPath, t.ID)
	raw, err := c.do(ctx, http.MethodPut, path, nil, newTransactionPayload(t))
	if err != nil {
		return core.Transaction{}, err
	}
	rec, err := decodeItem[transactionRecord](raw)
	if err != nil {
		return core.Transaction{}, decodeError(http.MethodPut, path, err)
	}
	return normalizeTransaction(rec), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", transactionsPath, id), nil, nil)
	return err
}
