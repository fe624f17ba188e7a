package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/cmd/odyssey-pos/cli"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	birhttp "github.com/odyssey-erp/odyssey-pos/internal/bir/http"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/receipt"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/store"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/jobs"
	"github.com/odyssey-erp/odyssey-pos/report"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "bir" {
		os.Exit(cli.NewBIRCLI(os.Stdout, os.Stderr).Run(os.Args[2:]))
	}

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("load timezone", slog.Any("error", err))
		os.Exit(1)
	}

	sequence, closeSequence, err := openSequence(ctx, cfg, logger)
	if err != nil {
		logger.Error("open OR sequence", slog.String("backend", cfg.ORSequenceBackend), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeSequence()

	metrics := observability.NewMetrics()
	reportClient := report.NewClient(cfg.GotenbergURL)
	service := bir.NewService(sequence, bir.Options{
		Profile:  cfg.BusinessProfile(),
		Location: loc,
		Renderer: reportClient,
		Metrics:  metrics,
		Logger:   logger,
	})

	birHandler := birhttp.NewHandler(logger, service)
	reportHandler := report.NewHandler(reportClient, cfg.BusinessProfile(), logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		BIRHandler:    birHandler,
		ReportHandler: reportHandler,
		JobHandler:    jobHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("or_backend", cfg.ORSequenceBackend),
			slog.String("timezone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// openSequence builds the configured OR sequence provider and a cleanup func.
func openSequence(ctx context.Context, cfg *app.Config, logger *slog.Logger) (receipt.SequenceProvider, func(), error) {
	switch cfg.ORSequenceBackend {
	case app.SequenceMemory:
		logger.Warn("OR numbers are kept in memory and reset on restart")
		return receipt.NewMemorySequence(), func() {}, nil
	case app.SequenceRedis:
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		return receipt.NewRedisSequence(client, cfg.ORSequenceSeries), closeFn, nil
	case app.SequencePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
		if err != nil {
			return nil, nil, err
		}
		if err := migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return receipt.NewPostgresSequence(pool, cfg.ORSequenceSeries), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown OR sequence backend %q", cfg.ORSequenceBackend)
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return store.New(tx).Migrate(ctx)
	})
}
