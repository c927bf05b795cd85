package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/ZNilakshi/clothify/internal/models"
)

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepo{db: db}
}

// CreateBundle is the single durability boundary of a checkout. In one
// transaction it reserves stock for every item (ordered by product id so
// concurrent checkouts cannot deadlock), inserts the order, its items, the
// payment and the sale record, and clears the customer's cart. Any failure
// rolls the whole bundle back, reservations included.
func (r *orderRepo) CreateBundle(ctx context.Context, order *models.Order) error {
	if order.Payment == nil || order.Sale == nil {
		return fmt.Errorf("order bundle must include payment and sale records")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order bundle must include at least one item")
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		reserved := make([]models.OrderItem, len(order.Items))
		copy(reserved, order.Items)
		sort.Slice(reserved, func(i, j int) bool { return reserved[i].ProductID < reserved[j].ProductID })

		for _, item := range reserved {
			if err := reserveStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		queryOrder := `
			INSERT INTO orders (order_id, customer_id, city_id, order_date, status, total_amount, shipping_fee)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, queryOrder,
			order.OrderID, order.CustomerID, order.CityID, order.OrderDate,
			order.Status, order.TotalAmount, order.ShippingFee,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING item_id
		`
		for i := range order.Items {
			item := &order.Items[i]
			err := tx.QueryRowContext(ctx, queryItem,
				order.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal,
			).Scan(&item.ItemID)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		queryPayment := `
			INSERT INTO payments (order_id, payment_method, payment_status, payment_date)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, queryPayment,
			order.OrderID, order.Payment.Method, order.Payment.Status, order.Payment.PaymentDate,
		); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		querySale := `
			INSERT INTO sales (order_id, transaction_date)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, querySale, order.OrderID, order.Sale.TransactionDate); err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}

		if _, err := tx.ExecContext(ctx, clearCartSQL, order.CustomerID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := loadOrder(ctx, r.db, orderID, false)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `
		SELECT order_id, customer_id, city_id, order_date, status, total_amount, shipping_fee
		FROM orders
		ORDER BY order_date DESC
	`
	return r.scanOrders(ctx, query)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	query := `
		SELECT order_id, customer_id, city_id, order_date, status, total_amount, shipping_fee
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC
	`
	return r.scanOrders(ctx, query, customerID)
}

// Transition loads the order with its row locked, lets fn mutate it, persists
// the new order and payment state, and restores each item's quantity to
// inventory when fn asks for a restock. fn returning an error aborts with no
// visible change.
func (r *orderRepo) Transition(ctx context.Context, orderID string, fn TransitionFunc) (*models.Order, error) {
	var result *models.Order

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		order, err := loadOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		restock, err := fn(order)
		if err != nil {
			return err
		}

		queryOrder := `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE order_id = $2
		`
		if _, err := tx.ExecContext(ctx, queryOrder, order.Status, order.OrderID); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if order.Payment != nil {
			queryPayment := `
				UPDATE payments
				SET payment_status = $1, payment_date = $2
				WHERE order_id = $3
			`
			if _, err := tx.ExecContext(ctx, queryPayment, order.Payment.Status, order.Payment.PaymentDate, order.OrderID); err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}

		if restock {
			items := make([]models.OrderItem, len(order.Items))
			copy(items, order.Items)
			sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
			for _, item := range items {
				if err := restoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepo) scanOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.CityID, &o.OrderDate, &o.Status, &o.TotalAmount, &o.ShippingFee); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrder(ctx context.Context, q rowQuerier, orderID string, lock bool) (*models.Order, error) {
	queryOrder := `
		SELECT order_id, customer_id, city_id, order_date, status, total_amount, shipping_fee
		FROM orders
		WHERE order_id = $1
	`
	if lock {
		queryOrder += ` FOR UPDATE`
	}

	var o models.Order
	err := q.QueryRowContext(ctx, queryOrder, orderID).Scan(
		&o.OrderID, &o.CustomerID, &o.CityID, &o.OrderDate, &o.Status, &o.TotalAmount, &o.ShippingFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	queryItems := `
		SELECT item_id, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY item_id
	`
	rows, err := q.QueryContext(ctx, queryItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ItemID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	queryPayment := `
		SELECT payment_method, payment_status, payment_date
		FROM payments
		WHERE order_id = $1
	`
	var p models.Payment
	err = q.QueryRowContext(ctx, queryPayment, orderID).Scan(&p.Method, &p.Status, &p.PaymentDate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	if err == nil {
		o.Payment = &p
	}

	querySale := `
		SELECT transaction_date
		FROM sales
		WHERE order_id = $1
	`
	var s models.Sale
	err = q.QueryRowContext(ctx, querySale, orderID).Scan(&s.TransactionDate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}
	if err == nil {
		o.Sale = &s
	}

	return &o, nil
}
