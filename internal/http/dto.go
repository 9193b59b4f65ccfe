package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/crm/internal/model"
)

// moneyPlaces is the number of decimal places used for amounts on the wire.
const moneyPlaces = 2

type customerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type productResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderResponse struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Customer    *customerResponse `json:"customer,omitempty"`
	Products    []productResponse `json:"products"`
	TotalAmount string            `json:"total_amount"`
	OrderDate   time.Time         `json:"order_date"`
	CreatedAt   time.Time         `json:"created_at"`
}

type statsResponse struct {
	TotalCustomers int64  `json:"total_customers"`
	TotalOrders    int64  `json:"total_orders"`
	TotalRevenue   string `json:"total_revenue"`
}

type createCustomerResponse struct {
	Customer customerResponse `json:"customer"`
	Message  string           `json:"message"`
}

type bulkCreateCustomersResponse struct {
	Customers []customerResponse `json:"customers"`
	Errors    []string           `json:"errors"`
}

type createProductResponse struct {
	Product productResponse `json:"product"`
	Message string          `json:"message"`
}

type restockProductsResponse struct {
	UpdatedProducts []productResponse `json:"updated_products"`
	Message         string            `json:"message"`
}

type createOrderResponse struct {
	Order   orderResponse `json:"order"`
	Message string        `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type createOrderRequest struct {
	CustomerID uuid.UUID   `json:"customer_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	OrderDate  *time.Time  `json:"order_date"`
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

func toCustomerResponse(c model.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     formatMoney(p.Price),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toOrderResponse(o model.Order) orderResponse {
	res := orderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Products:    mapSlice(o.Products, toProductResponse),
		TotalAmount: formatMoney(o.TotalAmount),
		OrderDate:   o.OrderDate,
		CreatedAt:   o.CreatedAt,
	}
	if o.Customer != nil {
		c := toCustomerResponse(*o.Customer)
		res.Customer = &c
	}
	return res
}

func mapSlice[T, R any](items []T, f func(T) R) []R {
	res := make([]R, 0, len(items))
	for _, item := range items {
		res = append(res, f(item))
	}
	return res
}
