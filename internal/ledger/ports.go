// Package ledger declares the ports every expense backend implements.
package ledger

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter persists one validated record and returns a backend
	// specific reference to it.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseLister returns every stored record in insertion order.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Entry, error)
	}

	// Ledger is a backend that can both append and list.
	Ledger interface {
		ExpenseWriter
		ExpenseLister
	}
)
