package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

// Store keeps the ledger in process memory. It is used by tests and by the
// memory backend for throwaway sessions.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

var _ ledger.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListExpenses returns a snapshot of the stored records as they would read
// back from a file.
func (s *Store) ListExpenses(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e.Entry())
	}
	return out, nil
}

// Len reports how many records have been appended.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
