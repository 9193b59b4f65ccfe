package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicCustomerCreated   = "crm.customer.created"
	TopicOrderCreated      = "crm.order.created"
	TopicProductsRestocked = "crm.products.restocked"
)

// Topics lists every topic published by the CRM.
var Topics = []string{
	TopicCustomerCreated,
	TopicOrderCreated,
	TopicProductsRestocked,
}

type CustomerCreatedEvent struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	ProductIDs  []uuid.UUID     `json:"product_ids"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
}

type RestockedProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
}

type ProductsRestockedEvent struct {
	Products    []RestockedProduct `json:"products"`
	RestockedAt time.Time          `json:"restocked_at"`
}
