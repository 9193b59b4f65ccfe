package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/pkg/ptr"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

const integrationEnv = "CRM_INTEGRATION_TESTS"

var dbClient *db.Client

func TestMain(m *testing.M) {
	if os.Getenv(integrationEnv) == "" {
		os.Exit(m.Run())
	}

	code, err := runWithPostgres(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func runWithPostgres(m *testing.M) (int, error) {
	const port = 54329

	runtimeDir, err := os.MkdirTemp("", "crm-embedded-pg")
	if err != nil {
		return 0, fmt.Errorf("create runtime dir: %w", err)
	}
	defer os.RemoveAll(runtimeDir)

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Username("crm").
		Password("crm").
		Database("crm").
		Port(port).
		RuntimePath(runtimeDir))
	if err := pg.Start(); err != nil {
		return 0, fmt.Errorf("start postgres: %w", err)
	}
	defer pg.Stop() //nolint:errcheck

	ctx := context.Background()
	pool, err := db.NewPgxPool(ctx, config.Postgres{
		Host:            "localhost",
		Port:            port,
		User:            "crm",
		Password:        "crm",
		DB:              "crm",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	if err != nil {
		return 0, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	dbClient = db.NewClient(pool)

	return m.Run(), nil
}

func requireIntegration(t *testing.T) {
	t.Helper()
	if dbClient == nil {
		t.Skipf("set %s=1 to run repository integration tests", integrationEnv)
	}
}

func newCustomer(t *testing.T, email string) model.Customer {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Customer{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "Ada Lovelace",
		Email:     email,
		Phone:     "+14155551234",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newProduct(t *testing.T, name, price string, stock int) model.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Product{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCustomerRepository(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	repo := repository.NewCustomerRepository(dbClient)

	email := fmt.Sprintf("ada-%s@example.com", uuid.NewString())
	customer := newCustomer(t, email)
	require.NoError(t, repo.CreateCustomer(ctx, customer))

	t.Run("Should find customer by email", func(t *testing.T) {
		got, err := repo.GetCustomerByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, customer.ID, got.ID)
		assert.Equal(t, customer.Phone, got.Phone)

		exists, err := repo.ExistsCustomerByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Should reject duplicate email", func(t *testing.T) {
		err := repo.CreateCustomer(ctx, newCustomer(t, email))
		assert.ErrorIs(t, err, repository.ErrEmailAlreadyExists)
	})

	t.Run("Should filter by email", func(t *testing.T) {
		customers, err := repo.ListCustomers(ctx, repository.ListCustomersParams{EmailContains: email})
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, customer.ID, customers[0].ID)
	})

	t.Run("Should report missing customer", func(t *testing.T) {
		_, err := repo.GetCustomer(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestNestedTx(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	kept := newCustomer(t, fmt.Sprintf("kept-%s@example.com", uuid.NewString()))
	dropped := newCustomer(t, fmt.Sprintf("dropped-%s@example.com", uuid.NewString()))

	err := dbClient.WithTx(ctx, func(tx db.DB) error {
		repo := repository.NewCustomerRepository(tx)
		if err := repo.CreateCustomer(ctx, kept); err != nil {
			return err
		}

		nestedErr := tx.WithTx(ctx, func(sp db.DB) error {
			if err := repository.NewCustomerRepository(sp).CreateCustomer(ctx, dropped); err != nil {
				return err
			}
			return errors.New("abort savepoint")
		})
		assert.EqualError(t, nestedErr, "abort savepoint")
		return nil
	})
	require.NoError(t, err)

	repo := repository.NewCustomerRepository(dbClient)
	_, err = repo.GetCustomer(ctx, kept.ID)
	require.NoError(t, err)
	_, err = repo.GetCustomer(ctx, dropped.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	healthy, err := dbClient.IsHealthy(ctx)
	require.NoError(t, err)
	assert.True(t, healthy)
}

func TestOrderRepository(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	customerRepo := repository.NewCustomerRepository(dbClient)
	productRepo := repository.NewProductRepository(dbClient)
	orderRepo := repository.NewOrderRepository(dbClient)

	customer := newCustomer(t, fmt.Sprintf("order-%s@example.com", uuid.NewString()))
	require.NoError(t, customerRepo.CreateCustomer(ctx, customer))

	p1 := newProduct(t, "Laptop", "10.00", 5)
	p2 := newProduct(t, "Mouse", "15.50", 20)
	require.NoError(t, productRepo.CreateProduct(ctx, p1))
	require.NoError(t, productRepo.CreateProduct(ctx, p2))

	products, err := productRepo.ListProductsByIDs(ctx, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)

	order := model.Order{
		ID:         uuid.Must(uuid.NewV7()),
		CustomerID: customer.ID,
		Products:   products,
		OrderDate:  time.Now().UTC().Truncate(time.Microsecond),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, orderRepo.CreateOrder(ctx, order))
	require.NoError(t, orderRepo.SetOrderProducts(ctx, order.ID, []uuid.UUID{p1.ID, p2.ID}))
	require.NoError(t, orderRepo.UpdateOrderTotal(ctx, order.ID, order.CalculateTotal()))

	t.Run("Should load order with customer and products", func(t *testing.T) {
		got, err := orderRepo.GetOrder(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, "25.50", got.TotalAmount.StringFixed(2))
		require.NotNil(t, got.Customer)
		assert.Equal(t, customer.Email, got.Customer.Email)
		assert.Len(t, got.Products, 2)
	})

	t.Run("Should list orders since date for customer", func(t *testing.T) {
		orders, err := orderRepo.ListOrders(ctx, repository.ListOrdersParams{
			Since:      ptr.New(time.Now().Add(-time.Hour)),
			CustomerID: &customer.ID,
		})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, order.ID, orders[0].ID)
	})

	t.Run("Should include order in stats", func(t *testing.T) {
		stats, err := repository.NewReportRepository(dbClient).GetStats(ctx)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, stats.TotalOrders, int64(1))
		assert.True(t, stats.TotalRevenue.GreaterThanOrEqual(decimal.RequireFromString("25.50")))
	})

	t.Run("Should cascade customer delete to orders", func(t *testing.T) {
		require.NoError(t, customerRepo.DeleteCustomer(ctx, customer.ID))

		_, err := orderRepo.GetOrder(ctx, order.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.ErrorIs(t, customerRepo.DeleteCustomer(ctx, customer.ID), repository.ErrNotFound)
	})
}

func TestProductRepositoryRestock(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(dbClient)

	low := newProduct(t, "Restock Cable", "1.99", 3)
	require.NoError(t, repo.CreateProduct(ctx, low))

	err := dbClient.WithTx(ctx, func(tx db.DB) error {
		products, err := repo.WithDB(tx).ListLowStockProductsForUpdate(ctx, model.LowStockThreshold)
		if err != nil {
			return err
		}

		items := make([]repository.UpdateProductStockItem, 0, len(products))
		for _, p := range products {
			items = append(items, repository.UpdateProductStockItem{ID: p.ID, Stock: p.Stock + model.RestockQuantity})
		}
		return repo.WithDB(tx).BulkUpdateProductStocks(ctx, items, time.Now())
	})
	require.NoError(t, err)

	products, err := repo.ListProductsByIDs(ctx, []uuid.UUID{low.ID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 13, products[0].Stock)
}

func TestOutboxMsgRepository(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	repo := repository.NewOutboxMsgRepository(dbClient)

	require.NoError(t, repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:   "crm.test",
		Headers: map[string]string{"X-Correlation-ID": "c-1"},
		Payload: json.RawMessage(`{"ok":true}`),
	}))

	err := dbClient.WithTx(ctx, func(tx db.DB) error {
		msgs, err := repo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
		if err != nil {
			return err
		}

		items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(msgs))
		for _, msg := range msgs {
			if msg.Topic == "crm.test" {
				assert.Equal(t, "c-1", msg.Headers["X-Correlation-ID"])
				assert.JSONEq(t, `{"ok":true}`, string(msg.Payload))
			}
			items = append(items, repository.BulkUpdateOutboxMsgsItem{ID: msg.ID})
		}
		return repo.WithDB(tx).BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{Items: items})
	})
	require.NoError(t, err)

	err = dbClient.WithTx(ctx, func(tx db.DB) error {
		msgs, err := repo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
		assert.Empty(t, msgs)
		return err
	})
	require.NoError(t, err)
}

func TestConcurrentRestock(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()

	productRepo := repository.NewProductRepository(dbClient)
	productSvc := service.NewProductService(
		dbClient,
		validator.MustNewDefaultValidator(),
		productRepo,
		repository.NewOutboxMsgRepository(dbClient),
	)

	low := newProduct(t, "Concurrent Restock Lamp", "4.50", 2)
	require.NoError(t, productRepo.CreateProduct(ctx, low))

	const runs = 4
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results [runs]service.UpdateLowStockProductsResult
		errs    [runs]error
	)
	for i := range runs {
		wg.Go(func() {
			<-start
			results[i], errs[i] = productSvc.UpdateLowStockProducts(ctx)
		})
	}
	close(start)
	wg.Wait()

	restocked := 0
	for i := range runs {
		require.NoError(t, errs[i])
		for _, p := range results[i].Products {
			if p.ID == low.ID {
				restocked++
			}
		}
	}
	assert.Equal(t, 1, restocked)

	products, err := productRepo.ListProductsByIDs(ctx, []uuid.UUID{low.ID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 2+model.RestockQuantity, products[0].Stock)
}
