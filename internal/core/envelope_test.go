package core

import (
	"encoding/json"
	"testing"
)

func TestEncodeEnvelopeEmpty(t *testing.T) {
	for _, entries := range [][]Entry{nil, {}} {
		got, err := EncodeEnvelope(entries)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != `{"gastos": []}` {
			t.Fatalf("got %s", got)
		}
	}
}

func TestEncodeEnvelopeScenario(t *testing.T) {
	e := Expense{Date: "2024-01-15", Category: "Comida", Amount: 12.5, PaymentMethod: "Efectivo"}
	got, err := EncodeEnvelope([]Entry{e.Entry()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"gastos": [{"fecha":"2024-01-15","categoria":"Comida","cantidad":12.5,"metodo_de_pago":"Efectivo"}]}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestEncodeEnvelopeKeepsOrderAndText(t *testing.T) {
	entries := []Entry{
		{Date: "2024-02-01", Category: "Café & té", Amount: ParseAmountCell("3.10"), PaymentMethod: "Tarjeta"},
		{Date: "2024-01-01", Category: "Año nuevo", Amount: ParseAmountCell("mucho"), PaymentMethod: "Efectivo"},
		{Date: "2024-01-02", Category: "Vacío", Amount: ParseAmountCell(""), PaymentMethod: "Bizum"},
	}
	got, err := EncodeEnvelope(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"gastos": [` +
		`{"fecha":"2024-02-01","categoria":"Café & té","cantidad":3.1,"metodo_de_pago":"Tarjeta"}, ` +
		`{"fecha":"2024-01-01","categoria":"Año nuevo","cantidad":"mucho","metodo_de_pago":"Efectivo"}, ` +
		`{"fecha":"2024-01-02","categoria":"Vacío","cantidad":null,"metodo_de_pago":"Bizum"}]}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}

	var decoded struct {
		Gastos []map[string]any `json:"gastos"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if len(decoded.Gastos) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(decoded.Gastos))
	}
}
