package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finclient/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api", time.Second, WithToken("tok"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", time.Second)
	assert.Error(t, err)
	_, err = NewClient("://nope", time.Second)
	assert.Error(t, err)
}

func TestListRecurringExpenses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/recurring_expenses", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err, "request id should be a uuid")

		writeJSON(w, http.StatusOK, `{"data":[
			{"id":1,"description":"Rent","amount":"800","start_date":"2023-01-01","createOnDom":1},
			{"id":2,"description":"Gym","amount":30,"start_date":"2023-02-10","create_on_dom":"10"}
		]}`)
	})

	got, err := c.ListRecurringExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, *got[0].DayOfMonth)
	assert.Equal(t, 10, *got[1].DayOfMonth)
	assert.Equal(t, "Gym", got[1].Description)
}

func TestListCategoriesBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/expense_categories", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"Home"},{"category_id":2,"name":"Food"}]`)
	})

	got, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{ID: 1, Name: "Home"}, {ID: 2, Name: "Food"}}, got)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"token expired"}`, wantIs: ErrUnauthorized, wantMsg: "token expired"},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"missing"}`, wantIs: ErrNotFound, wantMsg: "missing"},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantMsg: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.ListGoals(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindStatus, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.False(t, IsNetwork(err))
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, err = c.ListRecurringExpenses(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestDecodeFailureIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":"oops"}`)
	})

	_, err := c.ListCategories(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestListTransactionsSendsMonth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-03", r.URL.Query().Get("month"))
		writeJSON(w, http.StatusOK, `[{"id":"5","description":"Coffee","amount":"-3.50","date":"2024-03-02"}]`)
	})

	got, err := c.ListTransactions(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, "-3.50", core.FormatAmount(got[0].Amount))

	_, err = c.ListTransactions(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestCreateTransactionValidatesBeforeSending(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.CreateTransaction(context.Background(), core.Transaction{Description: "", Date: "2024-01-01"})
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
	assert.False(t, called)
}

func TestGoalCRUD(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/goals":
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Holiday", body["name"])
			assert.Equal(t, "1000.00", body["target_amount"])
			writeJSON(w, http.StatusCreated, `{"data":{"id":9,"name":"Holiday","target_amount":"1000","current_amount":"0"}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/goals/9":
			writeJSON(w, http.StatusOK, `{"id":9,"name":"Holiday","target_amount":"1000","current_amount":"250"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/goals/9":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	g, err := c.CreateGoal(ctx, core.Goal{Name: "Holiday", TargetAmount: mustAmount(t, "1000")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), g.ID)

	g.CurrentAmount = mustAmount(t, "250")
	g, err = c.UpdateGoal(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, 0.25, g.Progress())

	require.NoError(t, c.DeleteGoal(ctx, 9))
}

func TestParseExpenseAndSuggestCategory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/expenses/parse":
			assert.Equal(t, "pizza 12 yesterday", body["text"])
			writeJSON(w, http.StatusOK, `{"description":"pizza","amount":12,"date":"2024-03-09","expense_category_id":"3"}`)
		case "/api/categories/suggest":
			assert.Equal(t, "pizza", body["description"])
			writeJSON(w, http.StatusOK, `{"data":{"category_id":3}}`)
		}
	})
	ctx := context.Background()

	draft, err := c.ParseExpense(ctx, " pizza 12 yesterday ")
	require.NoError(t, err)
	assert.Equal(t, "pizza", draft.Description)
	assert.Equal(t, "2024-03-09", draft.Date)
	require.NotNil(t, draft.CategoryID)
	assert.Equal(t, int64(3), *draft.CategoryID)

	id, err := c.SuggestCategory(ctx, "pizza")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = c.ParseExpense(ctx, "  ")
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
}

func TestSuggestCategoryWithoutAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"category_id":null}`)
	})
	_, err := c.SuggestCategory(context.Background(), "mystery")
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestOTPFlow(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if r.Body != nil && r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		switch r.URL.Path {
		case "/auth/otp/request":
			assert.Equal(t, "me@example.com", body["email"])
			w.WriteHeader(http.StatusAccepted)
		case "/auth/otp/verify":
			assert.Equal(t, "123456", body["code"])
			writeJSON(w, http.StatusOK, `{"token":"`+token+`"}`)
		case "/goals":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `[]`)
		}
	}))
	defer srv.Close()
	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.RequestOTP(ctx, "me@example.com"))

	session, err := c.VerifyOTP(ctx, "me@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "42", session.UserID)
	assert.Equal(t, "me@example.com", session.Email)
	assert.True(t, session.ExpiresAt.Equal(exp))
	assert.Equal(t, token, c.Token())

	_, err = c.ListGoals(ctx)
	require.NoError(t, err)
}

func TestVerifyOTPRejectedCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":"invalid code"}`)
	})
	c.SetToken("")

	_, err := c.VerifyOTP(context.Background(), "me@example.com", "000000")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())
}

func TestParseSession(t *testing.T) {
	t.Run("user_id claim", func(t *testing.T) {
		s, err := ParseSession(signedToken(t, jwt.MapClaims{"user_id": float64(7)}))
		require.NoError(t, err)
		assert.Equal(t, "7", s.UserID)
		assert.True(t, s.ExpiresAt.IsZero())
		assert.False(t, s.Expired(time.Now()))
	})

	t.Run("expired", func(t *testing.T) {
		s, err := ParseSession(signedToken(t, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()}))
		require.NoError(t, err)
		assert.True(t, s.Expired(time.Now()))
	})

	t.Run("no subject", func(t *testing.T) {
		_, err := ParseSession(signedToken(t, jwt.MapClaims{"foo": "bar"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseSession("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func mustAmount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := core.ParseAmount(s)
	require.NoError(t, err)
	return d
}
