package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/log"
	"github.com/tuanvumaihuynh/crm/internal/service"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Service struct {
	cfg     config.Scheduler
	logger  *slog.Logger
	metrics *Metrics

	productSvc service.ProductService
	orderSvc   service.OrderService
	reportSvc  service.ReportService

	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces the clock used for log line timestamps and the
// reminder window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.httpClient = c
	}
}

func NewService(
	cfg config.Scheduler,
	logger *slog.Logger,
	metrics *Metrics,
	productSvc service.ProductService,
	orderSvc service.OrderService,
	reportSvc service.ReportService,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "scheduler")),
		metrics:    metrics,
		productSvc: productSvc,
		orderSvc:   orderSvc,
		reportSvc:  reportSvc,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Jobs returns every job with its cron spec.
func (s *Service) Jobs() []Job {
	return []Job{
		{Name: "heartbeat", Spec: s.cfg.HeartbeatSpec, Run: s.Heartbeat},
		{Name: "restock", Spec: s.cfg.RestockSpec, Run: s.Restock},
		{Name: "order_reminders", Spec: s.cfg.ReminderSpec, Run: s.SendOrderReminders},
		{Name: "report", Spec: s.cfg.ReportSpec, Run: s.Report},
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	cronLogger := slogCronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	for _, job := range s.Jobs() {
		if _, err := c.AddFunc(job.Spec, func() {
			//nolint:errcheck
			s.RunJob(ctx, job)
		}); err != nil {
			return nil, fmt.Errorf("schedule %s job with spec %q: %w", job.Name, job.Spec, err)
		}
	}

	c.Start()

	return func() {
		<-c.Stop().Done()
	}, nil
}

// RunJob executes job bounded by the configured timeout. Errors and panics
// are logged and returned to the caller, never to the cron loop.
func (s *Service) RunJob(ctx context.Context, job Job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	ctx = log.ContextWithAttrs(ctx, slog.String("job", job.Name))
	start := time.Now()

	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("job panicked: %v", rvr)
		}

		status := statusSuccess
		if err != nil {
			status = statusFailure
			s.logger.ErrorContext(ctx, "job failed", slog.Any("error", err))
		} else {
			s.logger.InfoContext(ctx, "job completed", slog.Duration("duration", time.Since(start)))
		}

		s.metrics.RunsTotal.WithLabelValues(job.Name, status).Inc()
		s.metrics.RunDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
	}()

	return job.Run(ctx)
}

type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
