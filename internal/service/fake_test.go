package service_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory entity store. Transactions are emulated by
// restoring a snapshot when the transaction function fails.
type memStore struct {
	customers     []model.Customer
	products      map[uuid.UUID]model.Product
	orders        map[uuid.UUID]model.Order
	orderProducts map[uuid.UUID][]uuid.UUID
	outbox        []repository.CreateOutboxMsgParams

	// failEmail makes CreateCustomer fail with errStoreDown for that address.
	failEmail string
	// failStats makes GetStats fail with errStoreDown.
	failStats bool
}

func newMemStore() *memStore {
	return &memStore{
		products:      map[uuid.UUID]model.Product{},
		orders:        map[uuid.UUID]model.Order{},
		orderProducts: map[uuid.UUID][]uuid.UUID{},
	}
}

func (s *memStore) snapshot() memStore {
	cp := *s
	cp.customers = slices.Clone(s.customers)
	cp.products = maps.Clone(s.products)
	cp.orders = maps.Clone(s.orders)
	cp.orderProducts = maps.Clone(s.orderProducts)
	cp.outbox = slices.Clone(s.outbox)
	return cp
}

func (s *memStore) addProduct(name, price string, stock int) model.Product {
	p := model.Product{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addCustomer(email string) model.Customer {
	c := model.Customer{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  "Existing",
		Email: email,
	}
	s.customers = append(s.customers, c)
	return c
}

func (s *memStore) topics() []string {
	topics := make([]string, 0, len(s.outbox))
	for _, msg := range s.outbox {
		topics = append(topics, msg.Topic)
	}
	return topics
}

type fakeDB struct {
	db.DB
	store *memStore
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	snapshot := f.store.snapshot()
	if err := txFunc(f); err != nil {
		*f.store = snapshot
		return err
	}
	return nil
}

type memCustomerRepo struct{ s *memStore }

func (r memCustomerRepo) WithDB(db.DB) repository.CustomerRepository { return r }

func (r memCustomerRepo) CreateCustomer(_ context.Context, customer model.Customer) error {
	if customer.Email == r.s.failEmail {
		return errStoreDown
	}
	for _, c := range r.s.customers {
		if c.Email == customer.Email {
			return repository.ErrEmailAlreadyExists
		}
	}
	r.s.customers = append(r.s.customers, customer)
	return nil
}

func (r memCustomerRepo) GetCustomer(_ context.Context, id uuid.UUID) (model.Customer, error) {
	for _, c := range r.s.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Customer{}, repository.ErrNotFound
}

func (r memCustomerRepo) GetCustomerByEmail(_ context.Context, email string) (model.Customer, error) {
	for _, c := range r.s.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return model.Customer{}, repository.ErrNotFound
}

func (r memCustomerRepo) ExistsCustomerByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetCustomerByEmail(ctx, email)
	return err == nil, nil
}

func (r memCustomerRepo) ListCustomers(_ context.Context, params repository.ListCustomersParams) ([]model.Customer, error) {
	var res []model.Customer
	for _, c := range r.s.customers {
		if strings.Contains(c.Name, params.NameContains) && strings.Contains(c.Email, params.EmailContains) {
			res = append(res, c)
		}
	}
	return page(res, params.Limit, params.Offset), nil
}

func (r memCustomerRepo) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	i := slices.IndexFunc(r.s.customers, func(c model.Customer) bool { return c.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	r.s.customers = slices.Delete(r.s.customers, i, i+1)
	for orderID, o := range r.s.orders {
		if o.CustomerID == id {
			delete(r.s.orders, orderID)
			delete(r.s.orderProducts, orderID)
		}
	}
	return nil
}

type memProductRepo struct{ s *memStore }

func (r memProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r memProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.s.products[product.ID] = product
	return nil
}

func (r memProductRepo) ListProducts(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	var res []model.Product
	for _, p := range r.sorted() {
		if !strings.Contains(p.Name, params.NameContains) {
			continue
		}
		if params.StockLessThan != nil && p.Stock >= *params.StockLessThan {
			continue
		}
		res = append(res, p)
	}
	return page(res, params.Limit, params.Offset), nil
}

func (r memProductRepo) ListProductsByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	res := []model.Product{}
	for _, p := range r.sorted() {
		if slices.Contains(ids, p.ID) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r memProductRepo) ListLowStockProductsForUpdate(_ context.Context, threshold int) ([]model.Product, error) {
	res := []model.Product{}
	for _, p := range r.sorted() {
		if p.Stock < threshold {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r memProductRepo) BulkUpdateProductStocks(_ context.Context, items []repository.UpdateProductStockItem, updatedAt time.Time) error {
	for _, item := range items {
		p, ok := r.s.products[item.ID]
		if !ok {
			return repository.ErrNotFound
		}
		p.Stock = item.Stock
		p.UpdatedAt = updatedAt
		r.s.products[item.ID] = p
	}
	return nil
}

func (r memProductRepo) sorted() []model.Product {
	products := slices.Collect(maps.Values(r.s.products))
	slices.SortFunc(products, func(a, b model.Product) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return products
}

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) WithDB(db.DB) repository.OrderRepository { return r }

func (r memOrderRepo) CreateOrder(_ context.Context, order model.Order) error {
	order.Customer = nil
	order.Products = nil
	r.s.orders[order.ID] = order
	return nil
}

func (r memOrderRepo) SetOrderProducts(_ context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	r.s.orderProducts[orderID] = slices.Clone(productIDs)
	return nil
}

func (r memOrderRepo) UpdateOrderTotal(_ context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.TotalAmount = total
	r.s.orders[orderID] = o
	return nil
}

func (r memOrderRepo) GetOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return r.load(o), nil
}

func (r memOrderRepo) ListOrders(_ context.Context, params repository.ListOrdersParams) ([]model.Order, error) {
	var res []model.Order
	for _, o := range r.s.orders {
		if params.Since != nil && o.OrderDate.Before(*params.Since) {
			continue
		}
		if params.CustomerID != nil && o.CustomerID != *params.CustomerID {
			continue
		}
		res = append(res, r.load(o))
	}
	slices.SortFunc(res, func(a, b model.Order) int {
		return b.OrderDate.Compare(a.OrderDate)
	})
	return page(res, params.Limit, params.Offset), nil
}

func (r memOrderRepo) load(o model.Order) model.Order {
	for _, c := range r.s.customers {
		if c.ID == o.CustomerID {
			o.Customer = &c
		}
	}
	o.Products = []model.Product{}
	for _, id := range r.s.orderProducts[o.ID] {
		o.Products = append(o.Products, r.s.products[id])
	}
	return o
}

type memReportRepo struct{ s *memStore }

func (r memReportRepo) WithDB(db.DB) repository.ReportRepository { return r }

func (r memReportRepo) GetStats(context.Context) (model.Stats, error) {
	if r.s.failStats {
		return model.Stats{}, errStoreDown
	}
	stats := model.Stats{
		TotalCustomers: int64(len(r.s.customers)),
		TotalOrders:    int64(len(r.s.orders)),
		TotalRevenue:   decimal.Zero,
	}
	for _, o := range r.s.orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
	}
	return stats, nil
}

type memOutboxMsgRepo struct{ s *memStore }

func (r memOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r memOutboxMsgRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.s.outbox = append(r.s.outbox, params)
	return nil
}

func (r memOutboxMsgRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r memOutboxMsgRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func page[T any](items []T, limit, offset uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}
