package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/claimapi"
	"github.com/pharos-integrity/pharos/internal/server"
)

var serverPort int

const shutdownTimeout = 15 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the claim analysis HTTP server",
	Long: `Starts the HTTP server exposing the single-claim and multi-claim analyzers
under /functions/v1 and /api, plus /healthz and, when enabled, the activity
log under /api/audit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		analyzer, err := buildAnalyzer(cfg, logger)
		if err != nil {
			return err
		}

		database, store, err := openAudit(cfg)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		if database != nil {
			defer database.Close()
		}

		srv := server.New(server.Config{
			Port:              cfg.Server.Port,
			AllowedOrigins:    cfg.Server.AllowedOrigins,
			RequestTimeout:    cfg.Server.RequestTimeout,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		}, logger)

		srv.AddHealthCheck("llm", llmHealth(analyzer))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if store != nil {
			audit.RegisterRoutes(srv.Router(), store)
			srv.AddHealthCheck("audit", func() string {
				if err := database.Ping(); err != nil {
					return "error"
				}
				return "ok"
			})
			if cfg.Audit.RetentionDays > 0 {
				go pruneAudit(ctx, store, time.Duration(cfg.Audit.RetentionDays)*24*time.Hour)
			}
		}

		handler := claimapi.NewHandler(analyzer, logger,
			claimapi.WithRecorder(recorderFor(store)),
			claimapi.WithInterpretation(cfg.Analysis.ExposeInterpretation))
		claimapi.RegisterRoutes(srv.Router(), handler)

		logger.Info("pharos server starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("audit", store != nil))

		return serveUntilDone(ctx, srv.Start, srv.Shutdown)
	},
}

// configuredChecker is satisfied by *analysis.Analyzer.
type configuredChecker interface {
	Configured() bool
}

// llmHealth reports whether a model credential is set.
func llmHealth(a configuredChecker) func() string {
	return func() string {
		if a.Configured() {
			return "configured"
		}
		return "not_configured"
	}
}

// serveUntilDone runs start until ctx is done, then shuts down. It returns
// only once shutdown has finished, so in-flight requests complete before
// the caller closes the audit database.
func serveUntilDone(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// pruneAudit deletes activity log entries older than retention, once at
// start-up and then hourly until ctx is done.
func pruneAudit(ctx context.Context, store *audit.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.DeleteBefore(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Warn("Pruning audit log failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("Pruned audit log", zap.Int64("deleted", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
