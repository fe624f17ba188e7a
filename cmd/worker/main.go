package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/store"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/jobs"
	"github.com/odyssey-erp/odyssey-pos/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return store.New(tx).Migrate(ctx)
	})
	if err != nil {
		logger.Error("migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	// The worker never issues OR numbers, so no sequence provider is wired.
	service := bir.NewService(nil, bir.Options{
		Profile:  cfg.BusinessProfile(),
		Location: loc,
		Renderer: pdfClient,
		Metrics:  metrics,
		Logger:   logger,
	})
	filingJob := jobs.NewFilingJob(jobs.FilingJobConfig{
		Service:    service,
		Store:      store.New(pool),
		StorageDir: cfg.FilingStorageDir,
		Logger:     logger,
		Metrics:    metrics.Jobs(),
	})

	monthlyTask, err := jobs.NewForm2550MTask("")
	if err != nil {
		logger.Error("build form 2550M task", slog.Any("error", err))
		os.Exit(1)
	}
	alphalistTask, err := jobs.NewAlphalistTask(0)
	if err != nil {
		logger.Error("build alphalist task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers:  filingJob.Handlers(),
		Location:  loc,
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 1 * *", Task: monthlyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 4 5 1 *", Task: alphalistTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("timezone", loc.String()), slog.String("storage_dir", cfg.FilingStorageDir))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
