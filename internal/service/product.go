package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/crm/internal/event"
	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

const ProductCreatedMsg = "Product created successfully."

type CreateProductParams struct {
	Name  string          `json:"name" validate:"required,max=100"`
	Price decimal.Decimal `json:"price" validate:"dgt=0,dlt=100000000,dscale=2"`
	Stock int             `json:"stock" validate:"gte=0"`
}

type CreateProductResult struct {
	Product model.Product
	Message string
}

type ListProductsParams struct {
	NameContains  string `json:"name" validate:"max=100"`
	StockLessThan *int   `json:"stock_lt" validate:"omitempty,gte=0"`
	Limit         uint64 `json:"limit" validate:"lte=100"`
	Offset        uint64 `json:"offset"`
}

type UpdateLowStockProductsResult struct {
	Products []model.Product
	Message  string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (CreateProductResult, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	// UpdateLowStockProducts adds model.RestockQuantity to every product below
	// model.LowStockThreshold. Concurrent calls are serialized by row locks.
	UpdateLowStockProducts(ctx context.Context) (UpdateLowStockProductsResult, error)
}

type productService struct {
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (CreateProductResult, error) {
	if err := validateParams(s.validator, params); err != nil {
		return CreateProductResult{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return CreateProductResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Price:     params.Price,
		Stock:     params.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return CreateProductResult{}, fmt.Errorf("product repository create product: %w", err)
	}

	return CreateProductResult{
		Product: product,
		Message: ProductCreatedMsg,
	}, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	if err := validateParams(s.validator, params); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		NameContains:  params.NameContains,
		StockLessThan: params.StockLessThan,
		Limit:         pageSize(params.Limit),
		Offset:        params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return products, nil
}

func (s *productService) UpdateLowStockProducts(ctx context.Context) (UpdateLowStockProductsResult, error) {
	var updated []model.Product

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		products, err := s.productRepo.
			WithDB(db).
			ListLowStockProductsForUpdate(ctx, model.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("product repository list low stock products: %w", err)
		}

		if len(products) == 0 {
			updated = []model.Product{}
			return nil
		}

		now := time.Now().UTC()
		items := make([]repository.UpdateProductStockItem, 0, len(products))
		ev := event.ProductsRestockedEvent{
			Products:    make([]event.RestockedProduct, 0, len(products)),
			RestockedAt: now,
		}
		for i := range products {
			p := &products[i]
			ev.Products = append(ev.Products, event.RestockedProduct{
				ProductID: p.ID,
				Name:      p.Name,
				OldStock:  p.Stock,
				NewStock:  p.Stock + model.RestockQuantity,
			})

			p.Stock += model.RestockQuantity
			p.UpdatedAt = now
			items = append(items, repository.UpdateProductStockItem{ID: p.ID, Stock: p.Stock})
		}

		if err := s.productRepo.
			WithDB(db).
			BulkUpdateProductStocks(ctx, items, now); err != nil {
			return fmt.Errorf("product repository bulk update product stocks: %w", err)
		}

		if err := publishEvent(ctx, s.outboxMsgRepo.WithDB(db), event.TopicProductsRestocked, nil, ev); err != nil {
			return err
		}

		updated = products
		return nil
	}); err != nil {
		return UpdateLowStockProductsResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return UpdateLowStockProductsResult{
		Products: updated,
		Message:  fmt.Sprintf("%d products restocked successfully.", len(updated)),
	}, nil
}
