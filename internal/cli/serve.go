package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gastos/internal/log"
	"gastos/internal/mcpserver"
	"gastos/internal/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over MCP on stdin/stdout",
		Long:  "Serve the ledger over MCP on stdin/stdout. When METRICS_ADDR is set an HTTP listener exposes /metrics, /healthz and /readyz.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := ShutdownContext(cmd.Context())
	defer stop()

	sess, err := opts.open(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := mcpserver.New(sess.cfg.ServerName, sess.result.Service, sess.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The client closing stdin ends the session, and with it the metrics listener.
		defer cancel()
		err := srv.ServeStdio(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if sess.cfg.MetricsAddr != "" {
		ms := metrics.NewServer(sess.cfg.MetricsAddr, sess.metrics, sess.result.Service.Ready)
		g.Go(func() error {
			return ms.Run(gctx)
		})
	}

	sess.logger.Info("Gastos MCP server running",
		log.FieldBackend, sess.cfg.LedgerBackend,
		"metrics_addr", sess.cfg.MetricsAddr)

	if err := g.Wait(); err != nil {
		sess.logger.Error("Server stopped with error", log.FieldError, err)
		return exitError(ExitFailure, "%v", err)
	}
	return nil
}
