package main

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

	"github.com/finscope/finscope/internal/api"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a local scoring API backed by file storage",
		Long: `Starts an HTTP server that scores bundles posted to /api/v1/score and
serves saved reports from the configured storage. No database is needed;
use finscoped for the Postgres-backed service.

Usage:
  finscope serve --addr :7700
  curl -X POST --data @acme.json localhost:7700/api/v1/score`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, firstNonEmpty(addr, cfg.Server.Addr))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config)")

	return cmd
}

func runServe(ctx context.Context, addr string) error {
	ensureConfig()

	engine, err := newEngine(nil)
	if err != nil {
		return err
	}
	archive, err := openArchive(ctx)
	if err != nil {
		return err
	}
	opts := api.Options{Archive: archive}
	if sum, err := newSummarizer(); err == nil {
		opts.Summarizer = sum
	}

	h := api.NewHandler(engine, nil, api.NewReportCache(cfg.Server.CacheSize), opts)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, api.APIKeyAuth(cfg.Server.APIKey))

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.RequestLog(api.CORS(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "finscope API server\n")
	fmt.Fprintf(os.Stderr, "  Storage:    %s\n", firstNonEmpty(cfg.Storage.Bucket, cfg.ReportDir()))
	fmt.Fprintf(os.Stderr, "  Listening:  http://localhost%s\n", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
