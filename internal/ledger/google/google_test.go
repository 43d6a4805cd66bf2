package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gastos/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the subset of the values API the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	appends int
	updates int
	failGet bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && f.failGet:
		http.Error(w, `{"error":{"code":400,"message":"bad range"}}`, http.StatusBadRequest)

	case r.Method == http.MethodGet && strings.Contains(path, "A1:D1"):
		values := [][]any{}
		if len(f.rows) > 0 {
			values = append(values, f.rows[0])
		}
		writeJSON(w, map[string]any{"range": "Gastos!A1:D1", "values": values})

	case r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"range": "Gastos!A:D", "values": f.rows})

	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates++
		f.rows = append([][]any{vr.Values[0]}, f.rows...)
		writeJSON(w, map[string]any{"updatedRange": "Gastos!A1:D1", "updatedRows": 1})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
			http.Error(w, "valueInputOption="+got, http.StatusBadRequest)
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appends++
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows)
		writeJSON(w, map[string]any{
			"spreadsheetId": "sheet-id",
			"updates":       map[string]any{"updatedRange": fmt.Sprintf("Gastos!A%d:D%d", n, n), "updatedRows": 1},
		})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-id", "Gastos")
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AppendWritesHeaderThenRows(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	ref, err := c.Append(ctx, core.Expense{Date: "2024-01-15", Category: "Comida", Amount: 12.5, PaymentMethod: "Efectivo"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "Gastos!A2:D2" {
		t.Fatalf("ref = %q", ref)
	}
	if _, err := c.Append(ctx, core.Expense{Date: "2024-01-16", Category: "Casa", Amount: 3, PaymentMethod: "Tarjeta"}); err != nil {
		t.Fatal(err)
	}

	if fake.updates != 1 || fake.appends != 2 {
		t.Fatalf("updates=%d appends=%d", fake.updates, fake.appends)
	}
	if got := fmt.Sprint(fake.rows[0]); got != "[fecha categoria cantidad metodo_de_pago]" {
		t.Fatalf("header row = %s", got)
	}
	if got := fmt.Sprint(fake.rows[1]); got != "[2024-01-15 Comida 12.50 Efectivo]" {
		t.Fatalf("data row = %s", got)
	}
}

func TestClient_AppendKeepsExistingHeader(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{{"fecha", "categoria", "cantidad", "metodo_de_pago"}}}
	c := newTestClient(t, fake)

	if _, err := c.Append(context.Background(), core.Expense{Date: "2024-01-15", Category: "A", Amount: 1, PaymentMethod: "B"}); err != nil {
		t.Fatal(err)
	}
	if fake.updates != 0 || len(fake.rows) != 2 {
		t.Fatalf("updates=%d rows=%d", fake.updates, len(fake.rows))
	}
}

func TestClient_ListExpenses(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{
		{"fecha", "categoria", "cantidad", "metodo_de_pago"},
		{"2024-01-15", "Comida", "12.50", "Efectivo"},
		{},
		{"2024-01-16", "Casa", "n/a", "Tarjeta"},
		{"2024-01-17", "Ocio"},
	}}
	c := newTestClient(t, fake)

	entries, err := c.ListExpenses(context.Background())
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	got, err := core.EncodeEnvelope(entries)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"gastos": [` +
		`{"fecha":"2024-01-15","categoria":"Comida","cantidad":12.5,"metodo_de_pago":"Efectivo"}, ` +
		`{"fecha":"2024-01-16","categoria":"Casa","cantidad":"n/a","metodo_de_pago":"Tarjeta"}, ` +
		`{"fecha":"2024-01-17","categoria":"Ocio","cantidad":null,"metodo_de_pago":""}]}`
	if got != want {
		t.Fatalf("envelope =\n%s\nwant\n%s", got, want)
	}
}

func TestClient_ListEmptySheet(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	entries, err := c.ListExpenses(context.Background())
	if err != nil || entries == nil || len(entries) != 0 {
		t.Fatalf("entries = %#v, err = %v", entries, err)
	}
}

func TestClient_Faults(t *testing.T) {
	fake := &fakeSheets{failGet: true}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := c.ListExpenses(ctx); !errors.Is(err, core.ErrStorageRead) {
		t.Fatalf("expected ErrStorageRead, got %v", err)
	}
	if _, err := c.Append(ctx, core.Expense{Date: "2024-01-15", Category: "A", Amount: 1, PaymentMethod: "B"}); !errors.Is(err, core.ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
}

func TestClient_ValidateBeforeNetwork(t *testing.T) {
	c := &Client{spreadsheetID: "test"} // svc is nil

	_, err := c.Append(context.Background(), core.Expense{Date: "2024-13-01", Category: "A", Amount: 1, PaymentMethod: "B"})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	_, err = c.Append(context.Background(), core.Expense{Date: "2024-12-01", Category: "A", Amount: 1, PaymentMethod: "B"})
	if !errors.Is(err, core.ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite for nil service, got %v", err)
	}
}

func TestParseRowsWithoutHeader(t *testing.T) {
	entries := parseRows([][]any{{"2024-01-15", "Comida", 12.5, "Efectivo"}})
	if len(entries) != 1 || !entries[0].Amount.Numeric || entries[0].Amount.Value != 12.5 {
		t.Fatalf("entries = %+v", entries)
	}
}
