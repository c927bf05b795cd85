package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZNilakshi/clothify/internal/models"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.AddCustomer(models.Customer{CustomerID: 1, Name: "Amal", Email: "amal@example.com"})
	m.AddProduct(models.Product{ProductID: 100, Name: "Linen Shirt", SellingPrice: money(t, "25.00"), IsActive: true, Stock: 50}, 5)
	return m
}

func TestReserveNeverGoesNegative(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()

	// 100 goroutines each try to reserve 1 from a stock of 50.
	const workers = 100
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Reserve(ctx, 100, 1)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, failed int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failed++
		}
	}
	assert.Equal(t, 50, ok)
	assert.Equal(t, 50, failed)
	assert.Equal(t, 0, m.StockOf(100))
}

func TestReserveAndRestore(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Reserve(ctx, 100, 20))
	assert.Equal(t, 30, m.StockOf(100))

	err := m.Reserve(ctx, 100, 31)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 31, stockErr.Requested)
	assert.Equal(t, 30, stockErr.Available)
	assert.Equal(t, 30, m.StockOf(100), "failed reserve must not change stock")

	require.NoError(t, m.Restore(ctx, 100, 20))
	assert.Equal(t, 50, m.StockOf(100))

	require.ErrorIs(t, m.Reserve(ctx, 999, 1), ErrNotFound)
}

func TestCreateBundleAllOrNothing(t *testing.T) {
	m := seedMemory(t)
	m.AddProduct(models.Product{ProductID: 200, Name: "Denim Jeans", SellingPrice: money(t, "50.00"), IsActive: true, Stock: 1}, 0)
	ctx := context.Background()

	now := time.Now().UTC()
	order := &models.Order{
		OrderID:     "order-1",
		CustomerID:  1,
		OrderDate:   now,
		Status:      models.OrderPending,
		TotalAmount: money(t, "125.00"),
		Items: []models.OrderItem{
			{ProductID: 100, Quantity: 3, UnitPrice: money(t, "25.00"), LineTotal: money(t, "75.00")},
			{ProductID: 200, Quantity: 2, UnitPrice: money(t, "50.00"), LineTotal: money(t, "100.00")},
		},
		Payment: &models.Payment{Method: "CARD", Status: models.PaymentPending},
		Sale:    &models.Sale{TransactionDate: now},
	}

	err := m.CreateBundle(ctx, order)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(200), stockErr.ProductID)

	// The first line's reservation must not have been applied.
	assert.Equal(t, 50, m.StockOf(100))
	assert.Equal(t, 1, m.StockOf(200))
	_, err = m.GetByID(ctx, "order-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBundleRequiresCompleteRecords(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	now := time.Now().UTC()

	base := models.Order{
		OrderID:    "order-2",
		CustomerID: 1,
		OrderDate:  now,
		Status:     models.OrderPending,
		Items: []models.OrderItem{
			{ProductID: 100, Quantity: 1, UnitPrice: money(t, "25.00"), LineTotal: money(t, "25.00")},
		},
		Payment: &models.Payment{Method: "CARD", Status: models.PaymentPending},
		Sale:    &models.Sale{TransactionDate: now},
	}

	noPayment := base
	noPayment.Payment = nil
	require.Error(t, m.CreateBundle(ctx, &noPayment))

	noSale := base
	noSale.Sale = nil
	require.Error(t, m.CreateBundle(ctx, &noSale))

	noItems := base
	noItems.Items = nil
	require.Error(t, m.CreateBundle(ctx, &noItems))

	assert.Equal(t, 50, m.StockOf(100))
}

func TestTransitionFailureLeavesOrderUntouched(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	now := time.Now().UTC()

	order := &models.Order{
		OrderID:     "order-3",
		CustomerID:  1,
		OrderDate:   now,
		Status:      models.OrderPending,
		TotalAmount: money(t, "25.00"),
		Items: []models.OrderItem{
			{ProductID: 100, Quantity: 1, UnitPrice: money(t, "25.00"), LineTotal: money(t, "25.00")},
		},
		Payment: &models.Payment{Method: "CARD", Status: models.PaymentPending},
		Sale:    &models.Sale{TransactionDate: now},
	}
	require.NoError(t, m.CreateBundle(ctx, order))

	_, err := m.Transition(ctx, "order-3", func(o *models.Order) (bool, error) {
		o.Status = models.OrderCompleted
		return true, assert.AnError
	})
	require.Error(t, err)

	stored, err := m.GetByID(ctx, "order-3")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.Equal(t, 49, m.StockOf(100), "failed transition must not restock")
}

func TestLowStock(t *testing.T) {
	m := seedMemory(t)
	m.AddProduct(models.Product{ProductID: 200, Name: "Denim Jeans", SellingPrice: money(t, "50.00"), IsActive: true, Stock: 2}, 3)
	m.AddProduct(models.Product{ProductID: 300, Name: "Silk Scarf", SellingPrice: money(t, "15.00"), IsActive: true, Stock: 9}, 3)
	ctx := context.Background()

	levels, err := m.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(200), levels[0].ProductID)

	// Draining product 300 below its reorder level surfaces it too.
	require.NoError(t, m.Reserve(ctx, 300, 7))
	levels, err = m.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, int64(300), levels[1].ProductID)
}

func TestSalesReportAndTopProducts(t *testing.T) {
	m := seedMemory(t)
	m.AddProduct(models.Product{ProductID: 200, Name: "Denim Jeans", SellingPrice: money(t, "50.00"), IsActive: true, Stock: 20}, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	makeOrder := func(id string, date time.Time, productID int64, qty int, unit string) *models.Order {
		u := money(t, unit)
		total := u.Mul(decimal.NewFromInt(int64(qty)))
		return &models.Order{
			OrderID:     id,
			CustomerID:  1,
			OrderDate:   date,
			Status:      models.OrderPending,
			TotalAmount: total,
			Items: []models.OrderItem{
				{ProductID: productID, Quantity: qty, UnitPrice: u, LineTotal: total},
			},
			Payment: &models.Payment{Method: "CARD", Status: models.PaymentPending},
			Sale:    &models.Sale{TransactionDate: date},
		}
	}

	require.NoError(t, m.CreateBundle(ctx, makeOrder("o1", now.Add(-48*time.Hour), 100, 2, "25.00")))
	require.NoError(t, m.CreateBundle(ctx, makeOrder("o2", now.Add(-24*time.Hour), 200, 5, "50.00")))
	require.NoError(t, m.CreateBundle(ctx, makeOrder("o3", now.Add(-240*time.Hour), 100, 1, "25.00")))

	// Cancelled orders are excluded from every report.
	cancelled := makeOrder("o4", now.Add(-24*time.Hour), 100, 4, "25.00")
	require.NoError(t, m.CreateBundle(ctx, cancelled))
	_, err := m.Transition(ctx, "o4", func(o *models.Order) (bool, error) {
		o.Status = models.OrderCancelled
		return true, nil
	})
	require.NoError(t, err)

	report, err := m.SalesReport(ctx, now.Add(-72*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrderCount)
	assert.True(t, report.TotalRevenue.Equal(money(t, "300.00")), "revenue = %s", report.TotalRevenue)

	top, err := m.TopProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(200), top[0].ProductID)
	assert.Equal(t, 5, top[0].UnitsSold)
	assert.Equal(t, int64(100), top[1].ProductID)
	assert.Equal(t, 3, top[1].UnitsSold)
}
