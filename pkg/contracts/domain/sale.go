package domain

import (
	"math"
	"time"
)

// SaleRecord is one transaction line of the canonical dataset.
//
// Monetary fields that could not be parsed hold NaN. Aggregations treat NaN
// as a zero contribution.
type SaleRecord struct {
	CustomerID      string      `json:"customer_id"`
	CustomerName    string      `json:"customer_name,omitempty"`
	Status          OrderStatus `json:"status"`
	QuantityOrdered int         `json:"quantity_ordered" validate:"min=0"`
	MSRP            float64     `json:"msrp"`
	CostPrice       float64     `json:"cost_price"`
	SellingPrice    float64     `json:"selling_price"`
	Sales           float64     `json:"sales"`
	ProfitPerUnit   float64     `json:"profit_per_unit"`
	TotalProfit     float64     `json:"total_profit"`
	OrderDate       time.Time   `json:"order_date" validate:"required"`
	Month           string      `json:"month,omitempty"`
	Year            int         `json:"year,omitempty"`
	Product         string      `json:"product"`
	ProductCode     string      `json:"product_code,omitempty"`
	City            string      `json:"city,omitempty"`
	Country         string      `json:"country" validate:"required"`
	DealSize        DealSize    `json:"deal_size"`
}

// Revenue returns Sales with missing values counted as zero.
func (r SaleRecord) Revenue() float64 {
	return orZero(r.Sales)
}

// Profit returns TotalProfit with missing values counted as zero.
func (r SaleRecord) Profit() float64 {
	return orZero(r.TotalProfit)
}

// OrderStatus is the fulfilment state of an order. Values outside the known
// set are kept as-is.
type OrderStatus string

const (
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
	StatusResolved  OrderStatus = "Resolved"
	StatusOnHold    OrderStatus = "On Hold"
	StatusInProcess OrderStatus = "In Process"
	StatusDisputed  OrderStatus = "Disputed"
)

// DealSize is the segment label of an order.
type DealSize string

const (
	DealSizeSmall  DealSize = "Small"
	DealSizeMedium DealSize = "Medium"
	DealSizeLarge  DealSize = "Large"
)

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
