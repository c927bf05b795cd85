package repository

import (
	"context"
	"time"

	"github.com/ZNilakshi/clothify/internal/models"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

type CityRepository interface {
	GetByID(ctx context.Context, id int64) (*models.City, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// CartRepository mutates one customer's cart. Add and update perform the
// read-modify-write and the advisory stock check inside a single critical
// section, so two tabs adding the same product cannot lose an update.
type CartRepository interface {
	GetByCustomer(ctx context.Context, customerID int64) (*models.Cart, error)
	AddLine(ctx context.Context, customerID, productID int64, quantity int) error
	UpdateLineQuantity(ctx context.Context, customerID, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, customerID, lineID int64) error
	Clear(ctx context.Context, customerID int64) error
}

// TransitionFunc mutates a loaded order under the store's lock. Returning
// restock=true asks the store to put every item's quantity back into
// inventory in the same transaction. Returning an error aborts the whole
// transition with no visible change.
type TransitionFunc func(o *models.Order) (restock bool, err error)

// OrderRepository persists orders. CreateBundle is the only way an order (and
// its items, payment and sale record) comes into existence: it reserves stock
// for every item, writes the four records and empties the customer's cart as
// one atomic unit.
type OrderRepository interface {
	CreateBundle(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	Transition(ctx context.Context, orderID string, fn TransitionFunc) (*models.Order, error)
}

// InventoryRepository is the stock ledger. Reserve is an atomic conditional
// decrement: it either claims the quantity or fails leaving stock untouched.
// All stock mutation in this service funnels through the ledger (reservation
// at checkout, restore on cancellation); nothing writes the counter directly.
type InventoryRepository interface {
	Reserve(ctx context.Context, productID int64, quantity int) error
	Restore(ctx context.Context, productID int64, quantity int) error
	LowStock(ctx context.Context) ([]models.InventoryLevel, error)
}

type ReportRepository interface {
	SalesReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error)
}
