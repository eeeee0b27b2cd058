// Command finscoped is the finscope scoring service.
// It serves the scoring API backed by Postgres, object storage for bundle
// archives, and a health check.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/finscope/finscope/internal/api"
	"github.com/finscope/finscope/internal/platform"
	"github.com/finscope/finscope/internal/reports"
	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/config"
	"github.com/finscope/finscope/pkg/scoring"
)

func main() {
	if err := run(); err != nil {
		zap.L().Error("finscoped exited", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(os.Getenv("FINSCOPE_CONFIG"))
	if err != nil {
		return err
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	models, err := cfg.Scoring.BuildModels()
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(models...)

	opts := api.Options{}
	var repo api.ReportStore
	if cfg.Server.DatabaseURL != "" {
		db, err := platform.OpenDB(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return err
		}
		err = platform.AutoMigrate(db)
		db.Close()
		if err != nil {
			return err
		}

		pool, err := pgxpool.New(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo = reports.NewRepository(pool)
		opts.Ping = pool.Ping
	} else {
		zap.L().Warn("no database configured; reports are archived to storage only")
	}

	client, err := store.Open(ctx, cfg.Storage, envOrDefault("LOCAL_STORAGE_PATH", cfg.ReportDir()))
	if err != nil {
		return err
	}
	opts.Archive = store.NewArchive(client)

	if cfg.Summary.APIKey != "" {
		opts.Summarizer = summary.NewAnthropic(cfg.Summary.APIKey, cfg.Summary.Model, cfg.Summary.MaxTokens)
	}

	h := api.NewHandler(engine, repo, api.NewReportCache(cfg.Server.CacheSize), opts)

	// Set up HTTP routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, api.APIKeyAuth(cfg.Server.APIKey))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.RequestLog(api.CORS(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting finscoped",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.Bool("database", repo != nil),
			zap.Bool("summaries", opts.Summarizer != nil),
		)
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

	zap.L().Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("shutdown error", zap.Error(err))
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
