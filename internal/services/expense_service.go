package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

// Notifier is told about every expense that reached the ledger.
type Notifier interface {
	PublishExpenseRecorded(ctx context.Context, rowRef string, e core.Expense) error
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithNotifier publishes an event after each successful append.
func WithNotifier(n Notifier) Option {
	return func(s *ExpenseService) { s.notifier = n }
}

// WithMetrics records operation outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ExpenseService) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentExpense)
		}
	}
}

// ExpenseService validates input, appends it to the ledger and announces it.
type ExpenseService struct {
	ledger   ledger.Ledger
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger
}

func NewExpenseService(l ledger.Ledger, opts ...Option) *ExpenseService {
	cfg := log.DefaultConfig()
	cfg.Component = log.ComponentExpense

	s := &ExpenseService{
		ledger: l,
		logger: log.New(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddExpense validates in and appends it. Validation failures never touch
// the ledger. A failed notification is logged and does not fail the call,
// since the record is already stored.
func (s *ExpenseService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, string, error) {
	start := time.Now()

	e, err := in.Validate()
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected expense", log.NewFields().
			WithOperation(log.OpValidate).
			WithErrorType(log.ErrorTypeValidation).
			WithError(err).ToSlice()...)
		s.metrics.Observe(metrics.OpAddExpense, metrics.OutcomeInvalid, time.Since(start))
		return core.Expense{}, "", err
	}

	ref, err := s.ledger.Append(ctx, e)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to append expense", log.NewFields().
			WithOperation(log.OpAppend).
			WithErrorType(log.ErrorTypeStorage).
			WithError(err).ToSlice()...)
		s.metrics.Observe(metrics.OpAddExpense, outcomeFor(err), time.Since(start))
		return core.Expense{}, "", err
	}

	s.logger.InfoContext(ctx, "Expense recorded", log.NewFields().
		WithOperation(log.OpAppend).
		WithExpense(e.Date, e.Category, e.Amount, e.PaymentMethod).
		ToSlice()...)

	if s.notifier != nil {
		if err := s.notifier.PublishExpenseRecorded(ctx, ref, e); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish expense event", log.NewFields().
				WithOperation(log.OpPublish).
				WithErrorType(log.ErrorTypeNetwork).
				WithError(err).ToSlice()...)
		}
	}

	s.metrics.Observe(metrics.OpAddExpense, metrics.OutcomeOK, time.Since(start))
	return e, ref, nil
}

// ListExpenses returns the whole ledger in append order.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Entry, error) {
	start := time.Now()

	entries, err := s.ledger.ListExpenses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses", log.NewFields().
			WithOperation(log.OpList).
			WithErrorType(log.ErrorTypeStorage).
			WithError(err).ToSlice()...)
		s.metrics.Observe(metrics.OpListExpenses, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	s.logger.DebugContext(ctx, "Listed expenses", log.FieldOperation, log.OpList, log.FieldCount, len(entries))
	s.metrics.Observe(metrics.OpListExpenses, metrics.OutcomeOK, time.Since(start))
	return entries, nil
}

// Ready reports whether the ledger can be read.
func (s *ExpenseService) Ready(ctx context.Context) error {
	_, err := s.ledger.ListExpenses(ctx)
	return err
}

func outcomeFor(err error) string {
	var fe *core.FieldError
	if errors.As(err, &fe) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

// Close releases the ledger and the notifier when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.ledger.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ledger: %w", err))
		}
	}

	if c, ok := s.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}
