package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/event"
	"github.com/tuanvumaihuynh/crm/internal/http"
	"github.com/tuanvumaihuynh/crm/internal/http/metric"
	"github.com/tuanvumaihuynh/crm/internal/log"
	"github.com/tuanvumaihuynh/crm/internal/relay"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/scheduler"
	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/internal/storage/mq"
	"github.com/tuanvumaihuynh/crm/internal/telemetry"
	"github.com/tuanvumaihuynh/crm/pkg/cmdutil"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
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
		HTTP      config.HTTP
		Relay     config.Relay
		Kafka     config.Kafka
		Otel      config.Otel
		Scheduler config.Scheduler
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

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	customerRepository := repository.NewCustomerRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	orderRepository := repository.NewOrderRepository(dbClient)
	reportRepository := repository.NewReportRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	customerService := service.NewCustomerService(logger, dbClient, v, customerRepository, outboxMsgRepository)
	productService := service.NewProductService(dbClient, v, productRepository, outboxMsgRepository)
	orderService := service.NewOrderService(dbClient, v, customerRepository, productRepository, orderRepository, outboxMsgRepository)
	reportService := service.NewReportService(reportRepository)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(
			cfg.HTTP,
			logger,
			metric.New(prometheus.DefaultRegisterer),
			customerService,
			productService,
			orderService,
			reportService,
			dbClient,
		)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Go(func() {
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
			panic(fmt.Errorf("error running scheduler service: %w", err))
		}
		logger.InfoContext(ctx, "scheduler service started")

		<-interruptChan

		logger.InfoContext(ctx, "scheduler service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "scheduler service is stopped")
	})

	wg.Wait()

	return nil
}
