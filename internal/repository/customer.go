package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

const customersEmailKey = "customers_email_key"

var customerColumns = []string{"id", "name", "email", "phone", "created_at", "updated_at"}

type ListCustomersParams struct {
	NameContains  string
	EmailContains string
	Limit         uint64
	Offset        uint64
}

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	CreateCustomer(ctx context.Context, customer model.Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error)
	ExistsCustomerByEmail(ctx context.Context, email string) (bool, error)
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) CreateCustomer(ctx context.Context, customer model.Customer) error {
	query, args, err := psql.Insert("customers").
		SetMap(map[string]any{
			"id":         customer.ID,
			"name":       customer.Name,
			"email":      customer.Email,
			"phone":      customer.Phone,
			"created_at": customer.CreatedAt,
			"updated_at": customer.UpdatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert customer: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err, customersEmailKey) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r customerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	return r.getCustomer(ctx, squirrel.Expr("id = ?", id))
}

func (r customerRepository) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	return r.getCustomer(ctx, squirrel.Eq{"email": email})
}

func (r customerRepository) getCustomer(ctx context.Context, pred squirrel.Sqlizer) (model.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where(pred).
		ToSql()
	if err != nil {
		return model.Customer{}, fmt.Errorf("build select customer: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	customer, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, ErrNotFound
		}
		return model.Customer{}, fmt.Errorf("collect customer: %w", err)
	}

	return customer, nil
}

func (r customerRepository) ExistsCustomerByEmail(ctx context.Context, email string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("customers").
		Where(squirrel.Eq{"email": email}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists customer: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists customer: %w", err)
	}

	return exists, nil
}

func (r customerRepository) ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error) {
	query, args, err := listCustomersQuery(params).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list customers: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("collect customers: %w", err)
	}

	return customers, nil
}

func listCustomersQuery(params ListCustomersParams) squirrel.SelectBuilder {
	b := psql.Select(customerColumns...).From("customers")

	if params.NameContains != "" {
		b = b.Where(squirrel.ILike{"name": containsPattern(params.NameContains)})
	}
	if params.EmailContains != "" {
		b = b.Where(squirrel.ILike{"email": containsPattern(params.EmailContains)})
	}

	return paginate(b.OrderBy("created_at", "id"), params.Limit, params.Offset)
}

// DeleteCustomer removes the customer. Orders of the customer are removed by
// the ON DELETE CASCADE foreign key.
func (r customerRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("customers").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete customer: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanCustomer(row pgx.CollectableRow) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
