package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm/internal/apperr"
	"github.com/tuanvumaihuynh/crm/internal/event"
	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
	"github.com/tuanvumaihuynh/crm/pkg/zerror"
)

const CustomerCreatedMsg = "Customer created successfully."

type CreateCustomerParams struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,max=20,phone"`
}

type CreateCustomerResult struct {
	Customer model.Customer
	Message  string
}

type BulkCreateCustomersResult struct {
	Customers []model.Customer
	// Errors holds one entry per rejected row, prefixed with its 1-based position.
	Errors []string
}

type ListCustomersParams struct {
	NameContains  string `json:"name" validate:"max=100"`
	EmailContains string `json:"email" validate:"max=254"`
	Limit         uint64 `json:"limit" validate:"lte=100"`
	Offset        uint64 `json:"offset"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (CreateCustomerResult, error)
	// BulkCreateCustomers creates every valid row in its own transaction. It never
	// fails as a whole: rejected rows are reported in the result.
	BulkCreateCustomers(ctx context.Context, rows []CreateCustomerParams) BulkCreateCustomersResult
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error)
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	customerRepo  repository.CustomerRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCustomerService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	customerRepo repository.CustomerRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CustomerService {
	return &customerService{
		logger:        logger.With(slog.String("service", "customer")),
		db:            db,
		validator:     validator,
		customerRepo:  customerRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (CreateCustomerResult, error) {
	customer, err := s.createCustomer(ctx, params)
	if err != nil {
		return CreateCustomerResult{}, err
	}

	return CreateCustomerResult{
		Customer: customer,
		Message:  CustomerCreatedMsg,
	}, nil
}

func (s *customerService) BulkCreateCustomers(ctx context.Context, rows []CreateCustomerParams) BulkCreateCustomersResult {
	res := BulkCreateCustomersResult{
		Customers: make([]model.Customer, 0, len(rows)),
		Errors:    []string{},
	}

	for i, row := range rows {
		customer, err := s.createCustomer(ctx, row)
		if err != nil {
			var zErr zerror.ZError
			if !errors.As(err, &zErr) {
				s.logger.ErrorContext(ctx, "error creating customer in bulk",
					slog.Int("row", i+1),
					slog.Any("error", err),
				)
			}
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", i+1, apperr.Message(err)))
			continue
		}

		res.Customers = append(res.Customers, customer)
	}

	return res
}

// createCustomer checks that the email is unused, validates params and inserts
// the customer with its created event in one transaction. A taken email is
// reported ahead of any field validation failure.
func (s *customerService) createCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	customer := model.Customer{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		exists, err := s.customerRepo.
			WithDB(db).
			ExistsCustomerByEmail(ctx, customer.Email)
		if err != nil {
			return fmt.Errorf("customer repository exists customer by email: %w", err)
		}
		if exists {
			return apperr.NewEmailAlreadyExistsErr(customer.Email)
		}

		if err := validateParams(s.validator, params); err != nil {
			return err
		}

		if err := s.customerRepo.
			WithDB(db).
			CreateCustomer(ctx, customer); err != nil {
			if errors.Is(err, repository.ErrEmailAlreadyExists) {
				return apperr.NewEmailAlreadyExistsErr(customer.Email).WrapParent(err)
			}
			return fmt.Errorf("customer repository create customer: %w", err)
		}

		ev := event.CustomerCreatedEvent{
			CustomerID: customer.ID,
			Name:       customer.Name,
			Email:      customer.Email,
			CreatedAt:  customer.CreatedAt,
		}
		key := customer.ID.String()
		return publishEvent(ctx, s.outboxMsgRepo.WithDB(db), event.TopicCustomerCreated, &key, ev)
	}); err != nil {
		return model.Customer{}, fmt.Errorf("db with tx: %w", err)
	}

	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Customer{}, apperr.CustomerNotFoundErr
		}
		return model.Customer{}, fmt.Errorf("customer repository get customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Customer{}, apperr.CustomerNotFoundErr
		}
		return model.Customer{}, fmt.Errorf("customer repository get customer by email: %w", err)
	}

	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error) {
	if err := validateParams(s.validator, params); err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.ListCustomers(ctx, repository.ListCustomersParams{
		NameContains:  params.NameContains,
		EmailContains: params.EmailContains,
		Limit:         pageSize(params.Limit),
		Offset:        params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("customer repository list customers: %w", err)
	}

	return customers, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.CustomerNotFoundErr
		}
		return fmt.Errorf("customer repository delete customer: %w", err)
	}

	return nil
}
