package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm/internal/apperr"
	"github.com/tuanvumaihuynh/crm/internal/event"
	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

const OrderCreatedMsg = "Order created successfully."

type CreateOrderParams struct {
	CustomerID uuid.UUID
	ProductIDs []uuid.UUID
	// OrderDate defaults to the creation time.
	OrderDate *time.Time
}

type CreateOrderResult struct {
	Order   model.Order
	Message string
}

type ListOrdersParams struct {
	Since      *time.Time
	CustomerID *uuid.UUID
	Limit      uint64 `validate:"lte=100"`
	Offset     uint64
}

type OrderService interface {
	// CreateOrder checks the customer and every product before writing, so a
	// rejected order leaves no rows behind.
	CreateOrder(ctx context.Context, params CreateOrderParams) (CreateOrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error)
}

type orderService struct {
	db            db.DB
	validator     validator.Validator
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewOrderService(
	db db.DB,
	validator validator.Validator,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) OrderService {
	return &orderService{
		db:            db,
		validator:     validator,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (CreateOrderResult, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:         id,
		CustomerID: params.CustomerID,
		OrderDate:  now,
		CreatedAt:  now,
	}
	if params.OrderDate != nil {
		order.OrderDate = params.OrderDate.UTC()
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		customer, err := s.customerRepo.
			WithDB(db).
			GetCustomer(ctx, params.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.CustomerNotFoundErr
			}
			return fmt.Errorf("customer repository get customer: %w", err)
		}

		products, err := s.productRepo.
			WithDB(db).
			ListProductsByIDs(ctx, params.ProductIDs)
		if err != nil {
			return fmt.Errorf("product repository list products by ids: %w", err)
		}

		switch {
		case len(params.ProductIDs) > 0 && len(products) == 0:
			return apperr.ProductsNotFoundErr
		case len(products) != len(params.ProductIDs):
			return apperr.SomeProductsNotFoundErr
		case len(products) == 0:
			return apperr.OrderProductsRequiredErr
		}

		order.Customer = &customer
		order.Products = products
		total := order.CalculateTotal()
		if total.GreaterThanOrEqual(model.MaxOrderTotal) {
			return apperr.NewOrderTotalTooLargeErr(total, model.MaxOrderTotal)
		}

		if err := s.orderRepo.
			WithDB(db).
			CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("order repository create order: %w", err)
		}

		productIDs := make([]uuid.UUID, 0, len(products))
		for _, p := range products {
			productIDs = append(productIDs, p.ID)
		}

		if err := s.orderRepo.
			WithDB(db).
			SetOrderProducts(ctx, order.ID, productIDs); err != nil {
			return fmt.Errorf("order repository set order products: %w", err)
		}

		if err := s.orderRepo.
			WithDB(db).
			UpdateOrderTotal(ctx, order.ID, total); err != nil {
			return fmt.Errorf("order repository update order total: %w", err)
		}

		ev := event.OrderCreatedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			ProductIDs:  productIDs,
			TotalAmount: total,
			OrderDate:   order.OrderDate,
		}
		key := order.CustomerID.String()
		return publishEvent(ctx, s.outboxMsgRepo.WithDB(db), event.TopicOrderCreated, &key, ev)
	}); err != nil {
		return CreateOrderResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return CreateOrderResult{
		Order:   order,
		Message: OrderCreatedMsg,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Order{}, apperr.OrderNotFoundErr
		}
		return model.Order{}, fmt.Errorf("order repository get order: %w", err)
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error) {
	if err := validateParams(s.validator, params); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListOrders(ctx, repository.ListOrdersParams{
		Since:      params.Since,
		CustomerID: params.CustomerID,
		Limit:      pageSize(params.Limit),
		Offset:     params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("order repository list orders: %w", err)
	}

	return orders, nil
}
