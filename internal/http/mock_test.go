package http_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/service"
)

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) CreateCustomer(ctx context.Context, params service.CreateCustomerParams) (service.CreateCustomerResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.CreateCustomerResult), args.Error(1)
}

func (m *mockCustomerService) BulkCreateCustomers(ctx context.Context, rows []service.CreateCustomerParams) service.BulkCreateCustomersResult {
	args := m.Called(ctx, rows)
	return args.Get(0).(service.BulkCreateCustomersResult)
}

func (m *mockCustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Customer), args.Error(1)
}

func (m *mockCustomerService) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Customer), args.Error(1)
}

func (m *mockCustomerService) ListCustomers(ctx context.Context, params service.ListCustomersParams) ([]model.Customer, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Customer), args.Error(1)
}

func (m *mockCustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) CreateProduct(ctx context.Context, params service.CreateProductParams) (service.CreateProductResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.CreateProductResult), args.Error(1)
}

func (m *mockProductService) ListProducts(ctx context.Context, params service.ListProductsParams) ([]model.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductService) UpdateLowStockProducts(ctx context.Context) (service.UpdateLowStockProductsResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.UpdateLowStockProductsResult), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, params service.CreateOrderParams) (service.CreateOrderResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.CreateOrderResult), args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, params service.ListOrdersParams) ([]model.Order, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Order), args.Error(1)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) GetStats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

type fakeHealthChecker struct {
	healthy bool
	err     error
}

func (f fakeHealthChecker) IsHealthy(context.Context) (bool, error) {
	return f.healthy, f.err
}
