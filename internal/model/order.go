package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxOrderTotal is the exclusive upper bound of an order total, matching the
// NUMERIC(10, 2) column it is stored in.
var MaxOrderTotal = decimal.New(1, 8)

type Order struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Customer    *Customer       `json:"customer,omitempty"`
	Products    []Product       `json:"products"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CalculateTotal sets TotalAmount to the sum of the current prices of the
// attached products and returns it.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.Products {
		total = total.Add(p.Price)
	}
	o.TotalAmount = total

	return total
}
