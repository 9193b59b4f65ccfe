package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

var orderWithCustomerColumns = []string{
	"o.id", "o.customer_id", "o.total_amount", "o.order_date", "o.created_at",
	"c.id", "c.name", "c.email", "c.phone", "c.created_at", "c.updated_at",
}

type ListOrdersParams struct {
	Since      *time.Time
	CustomerID *uuid.UUID
	Limit      uint64
	Offset     uint64
}

type OrderRepository interface {
	WithDB(db db.DB) OrderRepository
	CreateOrder(ctx context.Context, order model.Order) error
	// SetOrderProducts replaces the product association of the order.
	SetOrderProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error
	UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error)
}

type orderRepository struct {
	db db.DB
}

func NewOrderRepository(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) WithDB(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) CreateOrder(ctx context.Context, order model.Order) error {
	total, err := decimalToNumeric(order.TotalAmount)
	if err != nil {
		return fmt.Errorf("convert total amount: %w", err)
	}

	query, args, err := psql.Insert("orders").
		SetMap(map[string]any{
			"id":           order.ID,
			"customer_id":  order.CustomerID,
			"total_amount": total,
			"order_date":   order.OrderDate,
			"created_at":   order.CreatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r orderRepository) SetOrderProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	query, args, err := psql.Delete("order_products").
		Where("order_id = ?", orderID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete order products: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete order products: %w", err)
	}

	if len(productIDs) == 0 {
		return nil
	}

	b := psql.Insert("order_products").Columns("order_id", "product_id")
	for _, productID := range productIDs {
		b = b.Values(orderID, productID)
	}

	query, args, err = b.ToSql()
	if err != nil {
		return fmt.Errorf("build insert order products: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert order products: %w", err)
	}

	return nil
}

func (r orderRepository) UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	amount, err := decimalToNumeric(total)
	if err != nil {
		return fmt.Errorf("convert total amount: %w", err)
	}

	query, args, err := psql.Update("orders").
		Set("total_amount", amount).
		Where("id = ?", orderID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order total: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	orders, err := r.listOrders(ctx, selectOrders().Where("o.id = ?", id))
	if err != nil {
		return model.Order{}, err
	}
	if len(orders) == 0 {
		return model.Order{}, ErrNotFound
	}

	return orders[0], nil
}

func (r orderRepository) ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error) {
	b := selectOrders()

	if params.Since != nil {
		b = b.Where(squirrel.GtOrEq{"o.order_date": *params.Since})
	}
	if params.CustomerID != nil {
		b = b.Where("o.customer_id = ?", *params.CustomerID)
	}

	return r.listOrders(ctx, paginate(b.OrderBy("o.order_date DESC", "o.id"), params.Limit, params.Offset))
}

func selectOrders() squirrel.SelectBuilder {
	return psql.Select(orderWithCustomerColumns...).
		From("orders o").
		Join("customers c ON c.id = o.customer_id")
}

func (r orderRepository) listOrders(ctx context.Context, b squirrel.SelectBuilder) ([]model.Order, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select orders: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrderWithCustomer)
	if err != nil {
		return nil, fmt.Errorf("collect orders: %w", err)
	}

	if err := r.attachProducts(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachProducts loads the products of every order with a single query.
func (r orderRepository) attachProducts(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	query, args, err := psql.Select("op.order_id", "p.id", "p.name", "p.price", "p.stock", "p.created_at", "p.updated_at").
		From("order_products op").
		Join("products p ON p.id = op.product_id").
		Where("op.order_id = ANY(?)", ids).
		OrderBy("p.name", "p.id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select order products: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select order products: %w", err)
	}

	type orderProduct struct {
		orderID uuid.UUID
		product model.Product
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (orderProduct, error) {
		var (
			item  orderProduct
			price pgtype.Numeric
			stock int32
		)
		if err := row.Scan(&item.orderID, &item.product.ID, &item.product.Name, &price, &stock,
			&item.product.CreatedAt, &item.product.UpdatedAt); err != nil {
			return orderProduct{}, err
		}

		d, err := numericToDecimal(price)
		if err != nil {
			return orderProduct{}, fmt.Errorf("convert price of product %s: %w", item.product.ID, err)
		}
		item.product.Price = d
		item.product.Stock = int(stock)

		return item, nil
	})
	if err != nil {
		return fmt.Errorf("collect order products: %w", err)
	}

	byOrder := make(map[uuid.UUID][]model.Product, len(orders))
	for _, item := range items {
		byOrder[item.orderID] = append(byOrder[item.orderID], item.product)
	}

	for i := range orders {
		orders[i].Products = byOrder[orders[i].ID]
		if orders[i].Products == nil {
			orders[i].Products = []model.Product{}
		}
	}

	return nil
}

func scanOrderWithCustomer(row pgx.CollectableRow) (model.Order, error) {
	var (
		o     model.Order
		c     model.Customer
		total pgtype.Numeric
	)
	if err := row.Scan(
		&o.ID, &o.CustomerID, &total, &o.OrderDate, &o.CreatedAt,
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return model.Order{}, err
	}

	d, err := numericToDecimal(total)
	if err != nil {
		return model.Order{}, fmt.Errorf("convert total amount of order %s: %w", o.ID, err)
	}
	o.TotalAmount = d
	o.Customer = &c

	return o, nil
}
