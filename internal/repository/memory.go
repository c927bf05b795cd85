package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ZNilakshi/clothify/internal/models"
)

// Memory is an in-memory store implementing every repository interface behind
// one mutex, which gives it the same atomicity guarantees as the postgres
// implementation: a checkout bundle commits or fails as a unit, and stock
// never goes negative under concurrent reservations. Used by tests and by
// local development without a database.
type Memory struct {
	mu         sync.Mutex
	customers  map[int64]models.Customer
	cities     map[int64]models.City
	products   map[int64]models.Product
	inventory  map[int64]*models.InventoryLevel
	carts      map[int64]*models.Cart
	orders     map[string]*models.Order
	nextLineID int64
	nextItemID int64
}

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[int64]models.Customer),
		cities:    make(map[int64]models.City),
		products:  make(map[int64]models.Product),
		inventory: make(map[int64]*models.InventoryLevel),
		carts:     make(map[int64]*models.Cart),
		orders:    make(map[string]*models.Order),
	}
}

// AddCustomer registers a customer and creates their (empty) cart, matching
// the production flow where a cart is created at registration time.
func (m *Memory) AddCustomer(c models.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.CustomerID] = c
	m.carts[c.CustomerID] = &models.Cart{CartID: c.CustomerID, CustomerID: c.CustomerID}
}

func (m *Memory) AddCity(c models.City) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[c.CityID] = c
}

// AddProduct stores the product and seeds its inventory row from p.Stock.
func (m *Memory) AddProduct(p models.Product, reorderLevel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[p.ProductID] = &models.InventoryLevel{
		ProductID:       p.ProductID,
		QuantityInStock: p.Stock,
		ReorderLevel:    reorderLevel,
	}
	p.Stock = 0
	m.products[p.ProductID] = p
}

// StockOf reports the current stock counter, for assertions in tests.
func (m *Memory) StockOf(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.inventory[productID]; ok {
		return inv.QuantityInStock
	}
	return 0
}

func (m *Memory) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (m *Memory) GetCityByID(ctx context.Context, id int64) (*models.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cities[id]
	if !ok {
		return nil, fmt.Errorf("city %d: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (m *Memory) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.productLocked(id)
}

func (m *Memory) productLocked(id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if inv, ok := m.inventory[id]; ok {
		p.Stock = inv.QuantityInStock
	}
	return &p, nil
}

// Customers, Cities and Products expose the lookup interfaces as separate
// values so the memory store can be wired anywhere the postgres repos can.
func (m *Memory) Customers() CustomerRepository { return customerFunc(m.GetCustomerByID) }
func (m *Memory) Cities() CityRepository       { return cityFunc(m.GetCityByID) }
func (m *Memory) Products() ProductRepository  { return productFunc(m.GetProductByID) }

type customerFunc func(context.Context, int64) (*models.Customer, error)

func (f customerFunc) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	return f(ctx, id)
}

type cityFunc func(context.Context, int64) (*models.City, error)

func (f cityFunc) GetByID(ctx context.Context, id int64) (*models.City, error) { return f(ctx, id) }

type productFunc func(context.Context, int64) (*models.Product, error)

func (f productFunc) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return f(ctx, id)
}

func (m *Memory) GetByCustomer(ctx context.Context, customerID int64) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[customerID]
	if !ok {
		return nil, fmt.Errorf("cart for customer %d: %w", customerID, ErrNotFound)
	}
	cp := *cart
	cp.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &cp, nil
}

func (m *Memory) AddLine(ctx context.Context, customerID, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[customerID]
	if !ok {
		return fmt.Errorf("cart for customer %d: %w", customerID, ErrNotFound)
	}
	product, err := m.productLocked(productID)
	if err != nil {
		return err
	}
	stock := product.Stock

	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			newQuantity := cart.Lines[i].Quantity + quantity
			if newQuantity > stock {
				return &InsufficientStockError{ProductID: productID, ProductName: product.Name, Requested: newQuantity, Available: stock}
			}
			cart.Lines[i].Quantity = newQuantity
			return nil
		}
	}

	if quantity > stock {
		return &InsufficientStockError{ProductID: productID, ProductName: product.Name, Requested: quantity, Available: stock}
	}
	m.nextLineID++
	cart.Lines = append(cart.Lines, models.CartLine{LineID: m.nextLineID, ProductID: productID, Quantity: quantity})
	return nil
}

func (m *Memory) UpdateLineQuantity(ctx context.Context, customerID, lineID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[customerID]
	if !ok {
		return fmt.Errorf("cart for customer %d: %w", customerID, ErrNotFound)
	}
	for i := range cart.Lines {
		if cart.Lines[i].LineID != lineID {
			continue
		}
		product, err := m.productLocked(cart.Lines[i].ProductID)
		if err != nil {
			return err
		}
		stock := product.Stock
		if quantity > stock {
			return &InsufficientStockError{ProductID: product.ProductID, ProductName: product.Name, Requested: quantity, Available: stock}
		}
		cart.Lines[i].Quantity = quantity
		return nil
	}
	return fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
}

func (m *Memory) RemoveLine(ctx context.Context, customerID, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[customerID]
	if !ok {
		return nil
	}
	for i := range cart.Lines {
		if cart.Lines[i].LineID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) Clear(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.carts[customerID]; ok {
		cart.Lines = nil
	}
	return nil
}

func (m *Memory) CreateBundle(ctx context.Context, order *models.Order) error {
	if order.Payment == nil || order.Sale == nil {
		return fmt.Errorf("order bundle must include payment and sale records")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order bundle must include at least one item")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate every reservation before applying any, so a failing line
	// leaves all counters untouched.
	sorted := make([]models.OrderItem, len(order.Items))
	copy(sorted, order.Items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	for _, item := range sorted {
		inv, ok := m.inventory[item.ProductID]
		if !ok {
			return fmt.Errorf("inventory for product %d: %w", item.ProductID, ErrNotFound)
		}
		if inv.QuantityInStock < item.Quantity {
			name := ""
			if p, ok := m.products[item.ProductID]; ok {
				name = p.Name
			}
			return &InsufficientStockError{ProductID: item.ProductID, ProductName: name, Requested: item.Quantity, Available: inv.QuantityInStock}
		}
	}
	for _, item := range sorted {
		m.inventory[item.ProductID].QuantityInStock -= item.Quantity
	}

	for i := range order.Items {
		m.nextItemID++
		order.Items[i].ItemID = m.nextItemID
	}
	m.orders[order.OrderID] = cloneOrder(order)

	if cart, ok := m.carts[order.CustomerID]; ok {
		cart.Lines = nil
	}
	return nil
}

func (m *Memory) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return cloneOrder(order), nil
}

func (m *Memory) GetAll(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, *cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders, nil
}

func (m *Memory) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []models.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders, nil
}

func (m *Memory) Transition(ctx context.Context, orderID string, fn TransitionFunc) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	next := cloneOrder(stored)
	restock, err := fn(next)
	if err != nil {
		return nil, err
	}

	if restock {
		for _, item := range next.Items {
			if inv, ok := m.inventory[item.ProductID]; ok {
				inv.QuantityInStock += item.Quantity
			}
		}
	}

	m.orders[orderID] = next
	return cloneOrder(next), nil
}

func (m *Memory) Reserve(ctx context.Context, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.inventory[productID]
	if !ok {
		return fmt.Errorf("inventory for product %d: %w", productID, ErrNotFound)
	}
	if inv.QuantityInStock < quantity {
		name := ""
		if p, ok := m.products[productID]; ok {
			name = p.Name
		}
		return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: quantity, Available: inv.QuantityInStock}
	}
	inv.QuantityInStock -= quantity
	return nil
}

func (m *Memory) Restore(ctx context.Context, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.inventory[productID]
	if !ok {
		return fmt.Errorf("inventory for product %d: %w", productID, ErrNotFound)
	}
	inv.QuantityInStock += quantity
	return nil
}

func (m *Memory) LowStock(ctx context.Context) ([]models.InventoryLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var levels []models.InventoryLevel
	for _, inv := range m.inventory {
		if inv.QuantityInStock <= inv.ReorderLevel {
			levels = append(levels, *inv)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ProductID < levels[j].ProductID })
	return levels, nil
}

func (m *Memory) SalesReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &models.SalesReport{From: from, To: to, TotalRevenue: decimal.Zero}
	for _, o := range m.orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		if o.OrderDate.Before(from) || !o.OrderDate.Before(to) {
			continue
		}
		report.OrderCount++
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalAmount)
	}
	return report, nil
}

func (m *Memory) TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byProduct := make(map[int64]*models.ProductSales)
	for _, o := range m.orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		for _, item := range o.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				name := ""
				if p, ok := m.products[item.ProductID]; ok {
					name = p.Name
				}
				ps = &models.ProductSales{ProductID: item.ProductID, Name: name, Revenue: decimal.Zero}
				byProduct[item.ProductID] = ps
			}
			ps.UnitsSold += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal)
		}
	}

	sales := make([]models.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		sales = append(sales, *ps)
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].UnitsSold != sales[j].UnitsSold {
			return sales[i].UnitsSold > sales[j].UnitsSold
		}
		return sales[i].ProductID < sales[j].ProductID
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		if o.Payment.PaymentDate != nil {
			d := *o.Payment.PaymentDate
			p.PaymentDate = &d
		}
		cp.Payment = &p
	}
	if o.Sale != nil {
		s := *o.Sale
		cp.Sale = &s
	}
	return &cp
}
