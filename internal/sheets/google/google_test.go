package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finclient/internal/core"
)

type fakeSheets struct {
	mu      sync.Mutex
	titles  []string
	added   []string
	cleared []string
	written [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/v4/spreadsheets/sheet-id":
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && path == "/v4/spreadsheets/sheet-id:batchUpdate":
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, path)
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": "'2024 Upcoming charges 03'!A1:E4"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestExporter(t *testing.T, fake *fakeSheets) *Exporter {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "sheet-id", "")
}

func testCharges() []core.EnrichedRecurringExpense {
	rent := core.EnrichedRecurringExpense{
		RecurringExpense: core.RecurringExpense{Description: "Rent", Amount: decimal.RequireFromString("-800"), NextChargeDate: "2024-03-01"},
		Category:         &core.Category{ID: 1, Name: "Home"},
		Account:          core.AccountFor("BankAccount", nil),
	}
	gym := core.EnrichedRecurringExpense{
		RecurringExpense: core.RecurringExpense{Description: "Gym", Amount: decimal.RequireFromString("29.9"), NextChargeDate: "2024-03-10"},
		Account:          core.AccountFor("CreditCard", nil),
	}
	return []core.EnrichedRecurringExpense{rent, gym}
}

func TestExportChargesCreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{}
	e := newTestExporter(t, fake)

	ref, err := e.ExportCharges(context.Background(), 2024, 3, testCharges())
	if err != nil {
		t.Fatalf("ExportCharges: %v", err)
	}
	if ref != "'2024 Upcoming charges 03'!A1:E4" {
		t.Errorf("ref = %q", ref)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.added) != 1 || fake.added[0] != "2024 Upcoming charges 03" {
		t.Errorf("added = %v", fake.added)
	}
	if len(fake.cleared) != 1 {
		t.Errorf("expected one clear, got %v", fake.cleared)
	}
	if len(fake.written) != 4 {
		t.Fatalf("written %d rows, want 4", len(fake.written))
	}
	if got := fake.written[1]; got[1] != "Rent" || got[2] != "Home" || got[3] != "Bank account" || got[4] != "800.00" {
		t.Errorf("rent row = %v", got)
	}
	if got := fake.written[3]; got[1] != "Total" || got[4] != "829.90" {
		t.Errorf("total row = %v", got)
	}
}

func TestExportChargesReusesExistingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"2024 Upcoming charges 03"}}
	e := newTestExporter(t, fake)

	if _, err := e.ExportCharges(context.Background(), 2024, 3, nil); err != nil {
		t.Fatalf("ExportCharges: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.added) != 0 {
		t.Errorf("tab should not be added again: %v", fake.added)
	}
	if len(fake.written) != 2 {
		t.Errorf("empty export writes header and total, got %d rows", len(fake.written))
	}
}

func TestExportChargesRejectsBadMonth(t *testing.T) {
	e := newTestExporter(t, &fakeSheets{})
	if _, err := e.ExportCharges(context.Background(), 2024, 0, nil); err != core.ErrInvalidMonth {
		t.Errorf("err = %v, want ErrInvalidMonth", err)
	}
}

func TestNewMissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	b, err := credentialsJSON(Config{ServiceAccountJSON: `{"type":"service_account"}`})
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Errorf("inline credentials: %q, %v", b, err)
	}

	if _, err := credentialsJSON(Config{ServiceAccountFile: "/non/existent.json"}); err == nil {
		t.Error("expected error for missing file")
	}

	_, err = credentialsJSON(Config{})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Upcoming charges", 2025, "2025 Upcoming charges"},
		{"", 2023, ""},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}

	if got := monthSheetName("Charges", 2024, 7); got != "2024 Charges 07" {
		t.Errorf("monthSheetName = %q", got)
	}
}
