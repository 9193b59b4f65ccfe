package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

var productColumns = []string{"id", "name", "price", "stock", "created_at", "updated_at"}

type ListProductsParams struct {
	NameContains  string
	StockLessThan *int
	Limit         uint64
	Offset        uint64
}

type UpdateProductStockItem struct {
	ID    uuid.UUID
	Stock int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	// ListLowStockProductsForUpdate locks and returns every product with stock
	// strictly below threshold. Must run inside a transaction.
	ListLowStockProductsForUpdate(ctx context.Context, threshold int) ([]model.Product, error)
	BulkUpdateProductStocks(ctx context.Context, items []UpdateProductStockItem, updatedAt time.Time) error
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := decimalToNumeric(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	if product.Stock > math.MaxInt32 || product.Stock < 0 {
		return fmt.Errorf("stock out of range: %d", product.Stock)
	}

	query, args, err := psql.Insert("products").
		SetMap(map[string]any{
			"id":         product.ID,
			"name":       product.Name,
			"price":      price,
			"stock":      int32(product.Stock),
			"created_at": product.CreatedAt,
			"updated_at": product.UpdatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	b := psql.Select(productColumns...).From("products")

	if params.NameContains != "" {
		b = b.Where(squirrel.ILike{"name": containsPattern(params.NameContains)})
	}
	if params.StockLessThan != nil {
		b = b.Where(squirrel.Lt{"stock": *params.StockLessThan})
	}

	return r.listProducts(ctx, paginate(b.OrderBy("created_at", "id"), params.Limit, params.Offset))
}

func (r productRepository) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	b := psql.Select(productColumns...).
		From("products").
		Where("id = ANY(?)", ids).
		OrderBy("id")

	return r.listProducts(ctx, b)
}

func (r productRepository) ListLowStockProductsForUpdate(ctx context.Context, threshold int) ([]model.Product, error) {
	b := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Lt{"stock": threshold}).
		OrderBy("id").
		Suffix("FOR UPDATE")

	return r.listProducts(ctx, b)
}

func (r productRepository) listProducts(ctx context.Context, b squirrel.SelectBuilder) ([]model.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select products: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) BulkUpdateProductStocks(ctx context.Context, items []UpdateProductStockItem, updatedAt time.Time) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	stocks := make([]int32, 0, len(items))
	for _, item := range items {
		if item.Stock > math.MaxInt32 || item.Stock < 0 {
			return fmt.Errorf("stock out of range for product %s: %d", item.ID, item.Stock)
		}
		ids = append(ids, item.ID)
		stocks = append(stocks, int32(item.Stock))
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products AS p
		SET
			stock      = s.stock,
			updated_at = @updated_at
		FROM (
			SELECT
				UNNEST(@ids::uuid[])    AS id,
				UNNEST(@stocks::int4[]) AS stock
		) AS s
		WHERE p.id = s.id;
	`, pgx.NamedArgs{
		"ids":        ids,
		"stocks":     stocks,
		"updated_at": updatedAt,
	})
	if err != nil {
		return fmt.Errorf("bulk update product stocks: %w", err)
	}
	if tag.RowsAffected() != int64(len(items)) {
		return fmt.Errorf("bulk update product stocks affected %d rows, expected %d", tag.RowsAffected(), len(items))
	}

	return nil
}

func scanProduct(row pgx.CollectableRow) (model.Product, error) {
	var (
		p     model.Product
		price pgtype.Numeric
		stock int32
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Product{}, err
	}

	d, err := numericToDecimal(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price of product %s: %w", p.ID, err)
	}
	p.Price = d
	p.Stock = int(stock)

	return p, nil
}
