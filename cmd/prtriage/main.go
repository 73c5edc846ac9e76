package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prtriage/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/prtriage/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/prtriage/internal/adapter/driving/http"
	"github.com/ericfisherdev/prtriage/internal/application"
	"github.com/ericfisherdev/prtriage/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env if present, then configuration from the environment.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"fetch_timeout", cfg.FetchTimeout,
		"high_churn_lines", cfg.HighChurnLines,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters and services.
	prStore := sqliteadapter.NewPRRepo(db)
	runSource := sqliteadapter.NewRunRepo(db)
	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.FetchTimeout)

	enricher := application.NewEnrichService(ghClient)
	engine := application.NewScoringEngine(application.ScoringConfig{HighChurnLines: cfg.HighChurnLines})
	triageSvc := application.NewTriageService(prStore, runSource, enricher, engine)

	// 6. Start the HTTP server.
	logger := slog.Default()
	handler := httphandler.NewHandler(triageSvc, prStore, cfg.RecentLimit, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("prtriage started", "listen_addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 7. Wait for shutdown signal or server failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return err
	}

	// 8. Graceful shutdown with a 10s drain timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
