package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"finclient/internal/core"
)

const goalsPath = "/goals"

type goalPayload struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      string `json:"deadline,omitempty"`
	CategoryID    *int64 `json:"expense_category_id,omitempty"`
}

func newGoalPayload(g core.Goal) goalPayload {
	return goalPayload{
		Name:          g.Name,
		TargetAmount:  core.FormatAmount(g.TargetAmount),
		CurrentAmount: core.FormatAmount(g.CurrentAmount),
		Deadline:      g.Deadline,
		CategoryID:    g.CategoryID,
	}
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	raw, err := c.do(ctx, http.MethodGet, goalsPath, nil, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList[goalRecord](raw)
	if err != nil {
		return nil, decodeError(http.MethodGet, goalsPath, err)
	}
	return mapSlice(records, normalizeGoal), nil
}

func (c *Client) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, goalsPath, nil, newGoalPayload(g))
	if err != nil {
		return core.Goal{}, err
	}
	rec, err := decodeItem[goalRecord](raw)
	if err != nil {
		return core.Goal{}, decodeError(http.MethodPost, goalsPath, err)
	}
	return normalizeGoal(rec), nil
}

func (c *Client) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == 0 {
		return core.Goal{}, errors.New("goal id is required")
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}
	path := fmt.Sprintf("%s/%d", goalsPath, g.ID)
	raw, err := c.do(ctx, http.MethodPut, path, nil, newGoalPayload(g))
	if err != nil {
		return core.Goal{}, err
	}
	rec, err := decodeItem[goalRecord](raw)
	if err != nil {
		return core.Goal{}, decodeError(http.MethodPut, path, err)
	}
	return normalizeGoal(rec), nil
}

func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", goalsPath, id), nil, nil)
	return err
}
