package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/crm/api-contract"
	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/http/metric"
	"github.com/tuanvumaihuynh/crm/internal/http/middleware"
	"github.com/tuanvumaihuynh/crm/internal/http/swagger"
	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

const (
	APIPrefix  = "/api/v1"
	HealthPath = "/healthz"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	customerSvc   service.CustomerService
	productSvc    service.ProductService
	orderSvc      service.OrderService
	reportSvc     service.ReportService
	healthChecker db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	metrics *metric.Metrics,
	customerSvc service.CustomerService,
	productSvc service.ProductService,
	orderSvc service.OrderService,
	reportSvc service.ReportService,
	healthChecker db.HealthChecker,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		metrics:       metrics,
		customerSvc:   customerSvc,
		productSvc:    productSvc,
		orderSvc:      orderSvc,
		reportSvc:     reportSvc,
		healthChecker: healthChecker,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the complete handler tree: middlewares, docs, health, metrics
// and the contract validated API.
func (s *Service) Router(ctx context.Context) (http.Handler, error) {
	doc, err := apicontract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load api contract: %w", err)
	}

	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r, doc); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	if err := s.RegisterHandlers(r, doc); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

// RegisterHandlers mounts health, metrics and every API route, validating
// API requests against doc.
func (s *Service) RegisterHandlers(r chi.Router, doc *openapi3.T) error {
	validate, err := middleware.OpenAPIValidator(doc, s.handleRequestError)
	if err != nil {
		return fmt.Errorf("create openapi validator: %w", err)
	}

	h := s.newHandler()

	r.Get(HealthPath, h.health.Check)
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(validate)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.customer.ListCustomers)
			r.Post("/", h.customer.CreateCustomer)
			r.Post("/bulk", h.customer.BulkCreateCustomers)
			r.Get("/{id}", h.customer.GetCustomer)
			r.Delete("/{id}", h.customer.DeleteCustomer)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.product.ListProducts)
			r.Post("/", h.product.CreateProduct)
			r.Post("/restock", h.product.RestockProducts)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.order.ListOrders)
			r.Post("/", h.order.CreateOrder)
			r.Get("/{id}", h.order.GetOrder)
		})

		r.Get("/stats", h.report.GetStats)
	})

	return nil
}

type handler struct {
	customer *customerHandler
	product  *productHandler
	order    *orderHandler
	report   *reportHandler
	health   *healthHandler
}

func (s *Service) newHandler() *handler {
	res := &responder{logger: s.logger}
	return &handler{
		customer: &customerHandler{responder: res, customerSvc: s.customerSvc},
		product:  &productHandler{responder: res, productSvc: s.productSvc},
		order:    &orderHandler{responder: res, orderSvc: s.orderSvc},
		report:   &reportHandler{responder: res, reportSvc: s.reportSvc},
		health:   &healthHandler{responder: res, checker: s.healthChecker},
	}
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	res := &responder{logger: s.logger}
	res.handleRequestError(w, r, err)
}
