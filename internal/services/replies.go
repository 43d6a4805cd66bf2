package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gastos/internal/core"
	"gastos/internal/metrics"
)

// PromptText is the fixed instruction returned by the prompt operation.
const PromptText = "Usa la herramienta agregar_gasto para agregar este gasto con"

// The operations below are what MCP clients and the CLI see. Every failure
// is rendered as text starting with "Error"; nothing is returned as an error.

// AddExpenseReply appends the expense and returns the confirmation or the
// error text.
func (s *ExpenseService) AddExpenseReply(ctx context.Context, in core.ExpenseInput) string {
	e, _, err := s.AddExpense(ctx, in)
	if err != nil {
		return ReplyForError(err)
	}
	return Confirmation(e)
}

// ExpensesReply returns the ledger as the {"gastos": [...]} envelope.
func (s *ExpenseService) ExpensesReply(ctx context.Context) string {
	entries, err := s.ListExpenses(ctx)
	if err != nil {
		return ReplyForError(err)
	}
	out, err := core.EncodeEnvelope(entries)
	if err != nil {
		return ReplyForError(core.ReadFault(err))
	}
	return out
}

// PromptReply returns PromptText.
func (s *ExpenseService) PromptReply(context.Context) string {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpPrompt, metrics.OutcomeOK, time.Since(start)) }()
	return PromptText
}

// Confirmation is the success reply for a stored expense.
func Confirmation(e core.Expense) string {
	return fmt.Sprintf("Se ha agregado tu gasto: %s, %s, %s, %s",
		e.Date, e.Category, core.FormatAmount(e.Amount), e.PaymentMethod)
}

// ReplyForError renders err in the user-facing convention.
func ReplyForError(err error) string {
	var fe *core.FieldError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(fe.Err, core.ErrInvalidDate):
			return fmt.Sprintf("Error: fecha inválida '%v'. Usa YYYY-MM-DD.", fe.Value)
		case errors.Is(fe.Err, core.ErrInvalidAmount):
			return fmt.Sprintf("Error: cantidad inválida '%v'. Debe ser un número.", fe.Value)
		case errors.Is(fe.Err, core.ErrNegativeAmount):
			return "Error: la cantidad no puede ser negativa."
		case errors.Is(fe.Err, core.ErrEmptyField) && fe.Field == core.FieldCategory:
			return "Error: la categoría no puede estar vacía."
		case errors.Is(fe.Err, core.ErrEmptyField) && fe.Field == core.FieldPaymentMethod:
			return "Error: el método de pago no puede estar vacío."
		}
	}

	var se *core.StorageError
	if errors.As(err, &se) {
		switch se.Kind {
		case core.ErrStorageWrite:
			return fmt.Sprintf("Error al escribir en el archivo: %v", se.Err)
		case core.ErrStorageRead:
			return fmt.Sprintf("Error leyendo gastos: %v", se.Err)
		}
	}

	return fmt.Sprintf("Error: %v", err)
}
