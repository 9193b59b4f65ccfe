package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/log"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/scheduler"
	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/internal/telemetry"
	"github.com/tuanvumaihuynh/crm/pkg/cmdutil"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running scheduler application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		Postgres  config.Postgres
		Scheduler config.Scheduler
		Otel      config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	v := validator.MustNewDefaultValidator()

	customerRepository := repository.NewCustomerRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	orderRepository := repository.NewOrderRepository(dbClient)
	reportRepository := repository.NewReportRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productService := service.NewProductService(dbClient, v, productRepository, outboxMsgRepository)
	orderService := service.NewOrderService(dbClient, v, customerRepository, productRepository, orderRepository, outboxMsgRepository)
	reportService := service.NewReportService(reportRepository)

	interruptChan := cmdutil.InterruptChan()

	svc := scheduler.NewService(
		cfg.Scheduler,
		logger,
		scheduler.NewMetrics(prometheus.DefaultRegisterer),
		productService,
		orderService,
		reportService,
	)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running scheduler service: %w", err)
	}
	logger.InfoContext(ctx, "scheduler service started")

	<-interruptChan

	logger.InfoContext(ctx, "scheduler service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "scheduler service is stopped")

	return nil
}
