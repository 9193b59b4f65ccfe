package model

import "github.com/shopspring/decimal"

// Stats is the aggregate snapshot used by the periodic report.
type Stats struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}
