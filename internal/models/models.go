package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Product is the pricing/stock snapshot the core reads. Product CRUD itself
// lives outside this service; Stock reflects the inventory row at read time.
type Product struct {
	ProductID     int64               `json:"product_id"`
	Name          string              `json:"name"`
	SellingPrice  decimal.Decimal     `json:"selling_price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	IsActive      bool                `json:"is_active"`
	Stock         int                 `json:"stock"`
}

type Customer struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type City struct {
	CityID int64  `json:"city_id"`
	Name   string `json:"name"`
}

type Cart struct {
	CartID     int64      `json:"cart_id"`
	CustomerID int64      `json:"customer_id"`
	Lines      []CartLine `json:"lines"`
}

type CartLine struct {
	LineID    int64 `json:"line_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartSnapshot is the priced view of a cart. Its TotalAmount must agree with
// the total a checkout of the same lines would compute (before shipping).
type CartSnapshot struct {
	CartID      int64           `json:"cart_id"`
	CustomerID  int64           `json:"customer_id"`
	Lines       []CartLineView  `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCount   int             `json:"line_count"`
}

type CartLineView struct {
	LineID    int64           `json:"line_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order owns its items, payment and sale record. The four are created together
// in one transaction and share the order's lifecycle.
type Order struct {
	OrderID     string          `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	CityID      *int64          `json:"city_id,omitempty"`
	OrderDate   time.Time       `json:"order_date"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Items       []OrderItem     `json:"items,omitempty"`
	Payment     *Payment        `json:"payment,omitempty"`
	Sale        *Sale           `json:"sale,omitempty"`
}

// OrderItem carries the price snapshot taken at checkout time. Immutable once
// the order exists; later product price changes must not affect it.
type OrderItem struct {
	ItemID    int64           `json:"item_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Payment struct {
	Method      string        `json:"method"`
	Status      PaymentStatus `json:"status"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`
}

type Sale struct {
	TransactionDate time.Time `json:"transaction_date"`
}

type InventoryLevel struct {
	ProductID       int64 `json:"product_id"`
	QuantityInStock int   `json:"quantity_in_stock"`
	ReorderLevel    int   `json:"reorder_level"`
}

type SalesReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	OrderCount   int             `json:"order_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type ProductSales struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}
