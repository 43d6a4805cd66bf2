package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
)

func quietFactory() Factory {
	return NewFactory(log.New(log.Config{Output: io.Discard}), nil)
}

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{LedgerBackend: "nope"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		LedgerBackend:  "csv",
		CSVPath:        "data/gastos.csv",
		AMQPURL:        "amqp://localhost/",
		AMQPExchange:   "gastos",
		AMQPRoutingKey: "gasto_registrado",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != CSVBackend || cfg.CSVPath != "data/gastos.csv" || cfg.AMQPRoutingKey != "gasto_registrado" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"csv ok", Config{Type: CSVBackend, CSVPath: "gastos.csv"}, ""},
		{"csv without path", Config{Type: CSVBackend}, "CSV path is required"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"sheets without id", Config{Type: SheetsBackend}, "Spreadsheet ID is required"},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, "must be provided"},
		{"memory ok", Config{Type: MemoryBackend}, ""},
		{"unknown", Config{Type: "x"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"csv", Config{Type: CSVBackend, CSVPath: filepath.Join(dir, "gastos.csv")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "gastos.db")}},
		{"memory", Config{Type: MemoryBackend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			result, err := quietFactory().CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer result.Cleanup()

			reply := result.Service.AddExpenseReply(ctx, core.ExpenseInput{Date: "2024-01-15", Category: "Comida", Amount: 12.5, PaymentMethod: "Efectivo"})
			if reply != "Se ha agregado tu gasto: 2024-01-15, Comida, 12.50, Efectivo" {
				t.Fatalf("reply = %q", reply)
			}
			want := `{"gastos": [{"fecha":"2024-01-15","categoria":"Comida","cantidad":12.5,"metodo_de_pago":"Efectivo"}]}`
			if got := result.Service.ExpensesReply(ctx); got != want {
				t.Fatalf("envelope = %s", got)
			}
		})
	}
}

func TestCreateBackend_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := quietFactory().CreateBackend(ctx, Config{Type: "nope"}); err == nil {
		t.Fatal("expected error for invalid type")
	}

	_, err := quietFactory().CreateBackend(ctx, Config{
		Type:                     SheetsBackend,
		GoogleSpreadsheetID:      "id",
		GoogleServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "Google Sheets client") {
		t.Fatalf("expected sheets init error, got %v", err)
	}
}
