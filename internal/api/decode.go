package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	flog "finclient/internal/log"
)

var errNotAList = errors.New("response is neither an array nor a data envelope")

// envelope is the {"data": ...} wrapper some endpoints answer with.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap returns the payload of a data envelope, or raw itself.
func unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Data) == 0 {
		return trimmed
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return data
	}
	return trimmed
}

// decodeList decodes a bare array or a {"data": [...]} envelope. A null
// payload decodes to an empty list.
func decodeList[T any](raw []byte) ([]T, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	if body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		body = bytes.TrimSpace(env.Data)
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return []T{}, nil
		}
	}
	if body[0] != '[' {
		return nil, errNotAList
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeItem decodes a single object, bare or wrapped in a data envelope.
func decodeItem[T any](raw []byte) (T, error) {
	var out T
	body := unwrap(raw)
	if len(body) == 0 {
		return out, errors.New("empty response body")
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode item: %w", err)
	}
	return out, nil
}

// optionalInt reads an integer sent as a JSON number or numeric string.
// Missing, null, empty and non-integral values yield nil.
func optionalInt(raw json.RawMessage) *int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	if text == "" {
		return nil
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != float64(int64(f)) {
		return nil
	}
	n := int64(f)
	return &n
}

func intValue(raw json.RawMessage) int64 {
	if p := optionalInt(raw); p != nil {
		return *p
	}
	return 0
}

// amountValue reads an amount sent as a JSON number or a string with a dot
// or comma separator. Missing and null amounts are zero; an unreadable one
// is zero too and logged, so a single bad record does not sink its list.
func amountValue(raw json.RawMessage, field string) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			text = ""
		} else {
			text = strings.TrimSpace(s)
		}
	}
	text = strings.ReplaceAll(text, ",", ".")

	d, err := decimal.NewFromString(text)
	if err != nil {
		slog.Warn("Unreadable amount, using zero",
			flog.FieldComponent, flog.ComponentAPI,
			"field", field,
			"value", string(raw))
		return decimal.Zero
	}
	return d
}
