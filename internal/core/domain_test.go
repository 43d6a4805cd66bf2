package core

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"
)

func validInput() ExpenseInput {
	return ExpenseInput{
		Date:          "2024-01-15",
		Category:      "Comida",
		Amount:        12.5,
		PaymentMethod: "Efectivo",
	}
}

func TestExpenseInputValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExpenseInput)
		field  string
		err    error
	}{
		{"ok", func(*ExpenseInput) {}, "", nil},
		{"zero amount", func(in *ExpenseInput) { in.Amount = 0.0 }, "", nil},
		{"numeric string amount", func(in *ExpenseInput) { in.Amount = " 7.25 " }, "", nil},
		{"json number amount", func(in *ExpenseInput) { in.Amount = json.Number("3") }, "", nil},
		{"int amount", func(in *ExpenseInput) { in.Amount = 4 }, "", nil},
		{"leap day", func(in *ExpenseInput) { in.Date = "2024-02-29" }, "", nil},
		{"day first", func(in *ExpenseInput) { in.Date = "15-01-2024" }, FieldDate, ErrInvalidDate},
		{"not a leap year", func(in *ExpenseInput) { in.Date = "2023-02-29" }, FieldDate, ErrInvalidDate},
		{"month 13", func(in *ExpenseInput) { in.Date = "2024-13-01" }, FieldDate, ErrInvalidDate},
		{"empty date", func(in *ExpenseInput) { in.Date = "" }, FieldDate, ErrInvalidDate},
		{"empty category", func(in *ExpenseInput) { in.Category = "" }, FieldCategory, ErrEmptyField},
		{"blank category", func(in *ExpenseInput) { in.Category = "  \t" }, FieldCategory, ErrEmptyField},
		{"text amount", func(in *ExpenseInput) { in.Amount = "doce" }, FieldAmount, ErrInvalidAmount},
		{"nil amount", func(in *ExpenseInput) { in.Amount = nil }, FieldAmount, ErrInvalidAmount},
		{"bool amount", func(in *ExpenseInput) { in.Amount = true }, FieldAmount, ErrInvalidAmount},
		{"nan amount", func(in *ExpenseInput) { in.Amount = math.NaN() }, FieldAmount, ErrInvalidAmount},
		{"negative amount", func(in *ExpenseInput) { in.Amount = -0.01 }, FieldAmount, ErrNegativeAmount},
		{"negative string amount", func(in *ExpenseInput) { in.Amount = "-3" }, FieldAmount, ErrNegativeAmount},
		{"empty payment method", func(in *ExpenseInput) { in.PaymentMethod = "" }, FieldPaymentMethod, ErrEmptyField},
		{"blank payment method", func(in *ExpenseInput) { in.PaymentMethod = "   " }, FieldPaymentMethod, ErrEmptyField},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			got, err := in.Validate()
			if tc.err == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				if got.Date != in.Date || got.Category != in.Category || got.PaymentMethod != in.PaymentMethod {
					t.Fatalf("fields not carried over: %+v", got)
				}
				return
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %T", err)
			}
			if fe.Field != tc.field {
				t.Fatalf("field = %q, want %q", fe.Field, tc.field)
			}
		})
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	in := ExpenseInput{Date: "bad", Category: "", Amount: "x", PaymentMethod: ""}
	_, err := in.Validate()
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected date error first, got %v", err)
	}

	in.Date = "2024-01-01"
	in.Category = "ok"
	_, err = in.Validate()
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected amount error before payment method, got %v", err)
	}
}

func TestValidateNormalizesNegativeZero(t *testing.T) {
	in := validInput()
	in.Amount = math.Copysign(0, -1)
	got, err := in.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row := got.Row(); row[2] != "0.00" {
		t.Fatalf("amount column = %q, want 0.00", row[2])
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Date: "2025-01-01", Category: "Casa", Amount: 1, PaymentMethod: "Tarjeta"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: "2025/01/01", Category: "c", Amount: 1, PaymentMethod: "p"},
		{Date: "2025-01-01", Category: " ", Amount: 1, PaymentMethod: "p"},
		{Date: "2025-01-01", Category: "c", Amount: -1, PaymentMethod: "p"},
		{Date: "2025-01-01", Category: "c", Amount: math.Inf(1), PaymentMethod: "p"},
		{Date: "2025-01-01", Category: "c", Amount: 1, PaymentMethod: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseRow(t *testing.T) {
	e := Expense{Date: "2024-01-15", Category: "Comida", Amount: 12.5, PaymentMethod: "Efectivo"}
	row := e.Row()
	want := []string{"2024-01-15", "Comida", "12.50", "Efectivo"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	err := WriteFault(io.ErrShortWrite)
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite")
	}
	if !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("expected underlying fault to be reachable")
	}
	if errors.Is(err, ErrStorageRead) {
		t.Fatalf("write fault must not match ErrStorageRead")
	}
	if WriteFault(nil) != nil || ReadFault(nil) != nil {
		t.Fatalf("nil faults must stay nil")
	}
}

func TestEntryFromColumns(t *testing.T) {
	e := EntryFromColumns(map[string]string{
		FieldDate:     "2024-03-01",
		FieldCategory: "Ocio",
		FieldAmount:   "n/a",
	})
	if e.Date != "2024-03-01" || e.Category != "Ocio" || e.PaymentMethod != "" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Amount.Numeric || e.Amount.Raw != "n/a" {
		t.Fatalf("expected raw amount cell, got %+v", e.Amount)
	}
}
