package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the only date format accepted by the ledger.
const DateLayout = "2006-01-02"

// Ledger column names, in storage order.
const (
	FieldDate          = "fecha"
	FieldCategory      = "categoria"
	FieldAmount        = "cantidad"
	FieldPaymentMethod = "metodo_de_pago"
)

// Header returns the fixed header row of the ledger.
func Header() []string {
	return []string{FieldDate, FieldCategory, FieldAmount, FieldPaymentMethod}
}

type (
	// ExpenseInput is caller-supplied data before validation. Amount is kept
	// as received so a non-numeric value can be reported verbatim.
	ExpenseInput struct {
		Date          string
		Category      string
		Amount        any
		PaymentMethod string
	}

	// Expense is a validated ledger record.
	Expense struct {
		Date          string
		Category      string
		Amount        float64
		PaymentMethod string
	}

	// Entry is a record as read back from a ledger. Rows written by older
	// tools may carry an amount that is not a number.
	Entry struct {
		Date          string     `json:"fecha"`
		Category      string     `json:"categoria"`
		Amount        AmountCell `json:"cantidad"`
		PaymentMethod string     `json:"metodo_de_pago"`
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyField     = errors.New("empty field")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")

	ErrStorageWrite = errors.New("storage write fault")
	ErrStorageRead  = errors.New("storage read fault")
)

// FieldError reports the field that failed validation and the value it had.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, fmt.Sprint(e.Value), e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// StorageError wraps a backend fault. Kind is ErrStorageWrite or ErrStorageRead.
type StorageError struct {
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// WriteFault marks err as a storage write fault.
func WriteFault(err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: ErrStorageWrite, Err: err}
}

// ReadFault marks err as a storage read fault.
func ReadFault(err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: ErrStorageRead, Err: err}
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return &FieldError{Field: FieldDate, Value: s, Err: ErrInvalidDate}
	}
	return nil
}

// Validate checks the input field by field and returns the normalized record.
// The first failing field wins: date, category, amount, payment method.
func (in ExpenseInput) Validate() (Expense, error) {
	if err := ValidateDate(in.Date); err != nil {
		return Expense{}, err
	}
	if strings.TrimSpace(in.Category) == "" {
		return Expense{}, &FieldError{Field: FieldCategory, Value: in.Category, Err: ErrEmptyField}
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &FieldError{Field: FieldAmount, Value: in.Amount, Err: err}
	}
	if amount < 0 {
		return Expense{}, &FieldError{Field: FieldAmount, Value: in.Amount, Err: ErrNegativeAmount}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return Expense{}, &FieldError{Field: FieldPaymentMethod, Value: in.PaymentMethod, Err: ErrEmptyField}
	}

	// -0 would otherwise be persisted as "-0.00".
	if amount == 0 {
		amount = 0
	}

	return Expense{
		Date:          in.Date,
		Category:      in.Category,
		Amount:        amount,
		PaymentMethod: in.PaymentMethod,
	}, nil
}

// Validate re-checks an already built record. Backends call it before writing.
func (e Expense) Validate() error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return &FieldError{Field: FieldCategory, Value: e.Category, Err: ErrEmptyField}
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return &FieldError{Field: FieldAmount, Value: e.Amount, Err: ErrInvalidAmount}
	}
	if e.Amount < 0 {
		return &FieldError{Field: FieldAmount, Value: e.Amount, Err: ErrNegativeAmount}
	}
	if strings.TrimSpace(e.PaymentMethod) == "" {
		return &FieldError{Field: FieldPaymentMethod, Value: e.PaymentMethod, Err: ErrEmptyField}
	}
	return nil
}

// Row returns the record as persisted: amount with exactly two decimals.
func (e Expense) Row() []string {
	return []string{e.Date, e.Category, FormatAmount(e.Amount), e.PaymentMethod}
}

// Entry returns the record the way a reader would see it after a round trip.
func (e Expense) Entry() Entry {
	return Entry{
		Date:          e.Date,
		Category:      e.Category,
		Amount:        ParseAmountCell(FormatAmount(e.Amount)),
		PaymentMethod: e.PaymentMethod,
	}
}

// EntryFromColumns builds an Entry from a header-keyed row. Missing columns
// read as empty strings.
func EntryFromColumns(cols map[string]string) Entry {
	return Entry{
		Date:          cols[FieldDate],
		Category:      cols[FieldCategory],
		Amount:        ParseAmountCell(cols[FieldAmount]),
		PaymentMethod: cols[FieldPaymentMethod],
	}
}
