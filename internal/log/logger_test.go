package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})

	api := l.WithComponent(ComponentAPI)
	api.Info("request sent", FieldStatusCode, 200)

	out := buf.String()
	if !strings.Contains(out, "component=api") {
		t.Errorf("missing component in %q", out)
	}
	if api.Component() != ComponentAPI {
		t.Errorf("Component() = %q", api.Component())
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := New(DefaultConfig()).WithComponent(ComponentCache)
	ctx := NewContext(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("fallback component = %q", got.Component())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentAPI).
		WithRequest("GET", "/goals", "").
		WithResponse(404, 12).
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldSuccess] != false {
		t.Errorf("success = %v, want false", f[FieldSuccess])
	}
	if _, ok := f[FieldQuery]; ok {
		t.Error("empty query should be omitted")
	}
	if f[FieldError] != "boom" {
		t.Errorf("error = %v", f[FieldError])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice len = %d", got)
	}
}
