// Package sqlite keeps the ledger in a SQLite table. Row order is the
// autoincrement id, which matches append order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/ledger"

	_ "modernc.org/sqlite"
)

const (
	insertExpense = `INSERT INTO gastos (fecha, categoria, cantidad, metodo_de_pago) VALUES (?, ?, ?, ?)`
	selectExpense = `SELECT fecha, categoria, cantidad, metodo_de_pago FROM gastos ORDER BY id`
)

type Repository struct {
	db *sql.DB
}

var _ ledger.Ledger = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.ExpenseWriter
func (r *Repository) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	row := e.Row()
	res, err := r.db.ExecContext(ctx, insertExpense, row[0], row[1], row[2], row[3])
	if err != nil {
		return "", core.WriteFault(fmt.Errorf("insert expense: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", core.WriteFault(fmt.Errorf("last insert id: %w", err))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"fecha", e.Date,
		"categoria", e.Category,
		"cantidad", row[2])

	return strconv.FormatInt(id, 10), nil
}

// ListExpenses implements ledger.ExpenseLister
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectExpense)
	if err != nil {
		return nil, core.ReadFault(fmt.Errorf("query expenses: %w", err))
	}
	defer rows.Close()

	entries := []core.Entry{}
	for rows.Next() {
		var fecha, categoria, cantidad, metodo string
		if err := rows.Scan(&fecha, &categoria, &cantidad, &metodo); err != nil {
			return nil, core.ReadFault(fmt.Errorf("scan expense: %w", err))
		}
		entries = append(entries, core.EntryFromColumns(map[string]string{
			core.FieldDate:          fecha,
			core.FieldCategory:      categoria,
			core.FieldAmount:        cantidad,
			core.FieldPaymentMethod: metodo,
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, core.ReadFault(fmt.Errorf("iterate expenses: %w", err))
	}

	return entries, nil
}
