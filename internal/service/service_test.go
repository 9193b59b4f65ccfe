package service_test

import (
	"io"
	"log/slog"

	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

type fixture struct {
	store     *memStore
	customers service.CustomerService
	products  service.ProductService
	orders    service.OrderService
	reports   service.ReportService
}

func newFixture() *fixture {
	store := newMemStore()
	dbClient := &fakeDB{store: store}
	v := validator.MustNewDefaultValidator()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	customerRepo := memCustomerRepo{s: store}
	productRepo := memProductRepo{s: store}
	outboxMsgRepo := memOutboxMsgRepo{s: store}

	return &fixture{
		store:     store,
		customers: service.NewCustomerService(logger, dbClient, v, customerRepo, outboxMsgRepo),
		products:  service.NewProductService(dbClient, v, productRepo, outboxMsgRepo),
		orders:    service.NewOrderService(dbClient, v, customerRepo, productRepo, memOrderRepo{s: store}, outboxMsgRepo),
		reports:   service.NewReportService(memReportRepo{s: store}),
	}
}
