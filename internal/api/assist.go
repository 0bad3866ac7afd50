package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"finclient/internal/core"
)

const (
	parseExpensePath    = "/expenses/parse"
	suggestCategoryPath = "/categories/suggest"
)

// ErrNoSuggestion is returned when the server has no category to offer.
var ErrNoSuggestion = errors.New("no category suggested")

// ParseExpense sends free text such as "coffee 3.50 yesterday" to the
// server and returns the draft transaction it produced. The draft is not
// saved.
func (c *Client) ParseExpense(ctx context.Context, text string) (core.Transaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	raw, err := c.do(ctx, http.MethodPost, parseExpensePath, nil, map[string]string{"text": text})
	if err != nil {
		return core.Transaction{}, err
	}
	rec, err := decodeItem[transactionRecord](raw)
	if err != nil {
		return core.Transaction{}, decodeError(http.MethodPost, parseExpensePath, err)
	}
	return normalizeTransaction(rec), nil
}

type suggestionRecord struct {
	CategoryID        json.RawMessage `json:"category_id"`
	ExpenseCategoryID json.RawMessage `json:"expense_category_id"`
	ID                json.RawMessage `json:"id"`
}

// SuggestCategory asks the server which category fits description.
func (c *Client) SuggestCategory(ctx context.Context, description string) (int64, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, core.ErrEmptyDescription
	}
	raw, err := c.do(ctx, http.MethodPost, suggestCategoryPath, nil, map[string]string{"description": description})
	if err != nil {
		return 0, err
	}
	rec, err := decodeItem[suggestionRecord](raw)
	if err != nil {
		return 0, decodeError(http.MethodPost, suggestCategoryPath, err)
	}
	for _, field := range []json.RawMessage{rec.CategoryID, rec.ExpenseCategoryID, rec.ID} {
		if id := optionalInt(field); id != nil {
			return *id, nil
		}
	}
	return 0, ErrNoSuggestion
}
