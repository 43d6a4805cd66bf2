package backend

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/ledger"
	"gastos/internal/ledger/csvfile"
	gsheet "gastos/internal/ledger/google"
	"gastos/internal/ledger/memory"
	"gastos/internal/ledger/sqlite"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/services"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewFactory creates a new backend factory. m may be nil.
func NewFactory(logger *log.Logger, m *metrics.Metrics) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger:  logger.WithComponent(log.ComponentBackend),
		metrics: m,
	}
}

// CreateBackend opens the configured ledger and wraps it in an ExpenseService.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l, err := f.createLedger(ctx, config)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(f.logger),
		services.WithMetrics(f.metrics),
	}
	if notifier := f.createNotifier(ctx, config); notifier != nil {
		opts = append(opts, services.WithNotifier(notifier))
	}

	service := services.NewExpenseService(l, opts...)
	return &BackendResult{
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createLedger(ctx context.Context, config Config) (ledger.Ledger, error) {
	switch config.Type {
	case CSVBackend:
		f.logger.Info("Initialized CSV backend", log.FieldPath, config.CSVPath)
		return csvfile.New(config.CSVPath), nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil

	case SheetsBackend:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
		return cli, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createNotifier returns nil when events are disabled or the broker is
// unreachable. Expenses are still recorded in that case.
func (f *DefaultFactory) createNotifier(ctx context.Context, config Config) services.Notifier {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without expense events", log.FieldError, err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client
}
