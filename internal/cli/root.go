package cli

import (
	"context"

	"github.com/spf13/cobra"

	"gastos/internal/backend"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile    string
	backend    string
	csvPath    string
	sqlitePath string
	logLevel   string
}

// NewRootCmd builds the gastos command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "gastos",
		Short: "Expense ledger for MCP hosts",
		Long:  "gastos records expenses in a ledger and exposes it to MCP clients as the agregar_gasto tool, the resource://gastos resource and the prompt_agregar_gasto prompt.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage: true,
		Version:      version,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment from this file (default: .env if present)")
	flags.StringVar(&opts.backend, "backend", "", "Ledger backend: csv, sqlite, sheets or memory (overrides LEDGER_BACKEND)")
	flags.StringVar(&opts.csvPath, "csv-path", "", "CSV ledger path (overrides GASTOS_CSV_PATH)")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newPromptCmd(opts))
	return root
}

// session is what a subcommand gets once configuration and the backend are up.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	result  *backend.BackendResult
	metrics *metrics.Metrics
}

func (s *session) Close() {
	if s.result != nil && s.result.Cleanup != nil {
		if err := s.result.Cleanup(); err != nil {
			s.logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}
}

func (o *rootOptions) override(cfg *config.Config) {
	if o.backend != "" {
		cfg.LedgerBackend = o.backend
	}
	if o.csvPath != "" {
		cfg.CSVPath = o.csvPath
	}
	if o.sqlitePath != "" {
		cfg.SQLiteDBPath = o.sqlitePath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
}

// open loads configuration and creates the backend. withMetrics controls
// whether operations are counted.
func (o *rootOptions) open(ctx context.Context, cmd *cobra.Command, withMetrics bool) (*session, error) {
	if err := LoadEnvFile(o.envFile); err != nil {
		return nil, exitError(ExitConfig, "%v", err)
	}

	cfg, err := LoadAndValidateConfig(o.override)
	if err != nil {
		return nil, exitError(ExitConfig, "%v", err)
	}

	logger := SetupLogger(cfg, cmd.ErrOrStderr())

	var m *metrics.Metrics
	if withMetrics {
		m = metrics.New()
	}

	result, err := OpenBackend(ctx, cfg, logger, m)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldBackend, cfg.LedgerBackend, log.FieldError, err)
		return nil, exitError(ExitFailure, "%v", err)
	}

	return &session{cfg: cfg, logger: logger, result: result, metrics: m}, nil
}
