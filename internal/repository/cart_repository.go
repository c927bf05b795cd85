package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZNilakshi/clothify/internal/models"
)

type cartRepo struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetByCustomer(ctx context.Context, customerID int64) (*models.Cart, error) {
	cart := &models.Cart{CustomerID: customerID}

	query := `
		SELECT cart_id
		FROM carts
		WHERE customer_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&cart.CartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart for customer %d: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	queryLines := `
		SELECT line_id, product_id, quantity
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY line_id
	`
	rows, err := r.db.QueryContext(ctx, queryLines, cart.CartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.LineID, &line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return cart, nil
}

// AddLine merges the quantity into an existing line or inserts a new one. The
// whole read-modify-write, including the stock check against the resulting
// quantity, runs in one transaction with the cart row locked.
func (r *cartRepo) AddLine(ctx context.Context, customerID, productID int64, quantity int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		cartID, err := lockCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		name, stock, err := productStock(ctx, tx, productID)
		if err != nil {
			return err
		}

		queryLine := `
			SELECT line_id, quantity
			FROM cart_lines
			WHERE cart_id = $1 AND product_id = $2
		`
		var lineID int64
		var existing int
		err = tx.QueryRowContext(ctx, queryLine, cartID, productID).Scan(&lineID, &existing)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to query cart line: %w", err)
			}
			if quantity > stock {
				return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: quantity, Available: stock}
			}
			queryInsert := `
				INSERT INTO cart_lines (cart_id, product_id, quantity, created_at, updated_at)
				VALUES ($1, $2, $3, NOW(), NOW())
			`
			if _, err := tx.ExecContext(ctx, queryInsert, cartID, productID, quantity); err != nil {
				return fmt.Errorf("failed to add cart line: %w", err)
			}
			return nil
		}

		// Product already in the cart; quantities add.
		newQuantity := existing + quantity
		if newQuantity > stock {
			return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: newQuantity, Available: stock}
		}
		queryUpdate := `
			UPDATE cart_lines
			SET quantity = $1, updated_at = NOW()
			WHERE line_id = $2
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, newQuantity, lineID); err != nil {
			return fmt.Errorf("failed to update cart line quantity: %w", err)
		}
		return nil
	})
}

func (r *cartRepo) UpdateLineQuantity(ctx context.Context, customerID, lineID int64, quantity int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		cartID, err := lockCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		queryLine := `
			SELECT cl.product_id
			FROM cart_lines cl
			WHERE cl.cart_id = $1 AND cl.line_id = $2
		`
		var productID int64
		err = tx.QueryRowContext(ctx, queryLine, cartID, lineID).Scan(&productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
			}
			return fmt.Errorf("failed to query cart line: %w", err)
		}

		name, stock, err := productStock(ctx, tx, productID)
		if err != nil {
			return err
		}
		if quantity > stock {
			return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: quantity, Available: stock}
		}

		queryUpdate := `
			UPDATE cart_lines
			SET quantity = $1, updated_at = NOW()
			WHERE line_id = $2
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, quantity, lineID); err != nil {
			return fmt.Errorf("failed to update cart line quantity: %w", err)
		}
		return nil
	})
}

func (r *cartRepo) RemoveLine(ctx context.Context, customerID, lineID int64) error {
	query := `
		DELETE FROM cart_lines
		WHERE line_id = $1
		  AND cart_id = (SELECT cart_id FROM carts WHERE customer_id = $2)
	`
	if _, err := r.db.ExecContext(ctx, query, lineID, customerID); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, customerID int64) error {
	if _, err := r.db.ExecContext(ctx, clearCartSQL, customerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

const clearCartSQL = `
	DELETE FROM cart_lines
	WHERE cart_id = (SELECT cart_id FROM carts WHERE customer_id = $1)
`

func lockCart(ctx context.Context, q querier, customerID int64) (int64, error) {
	query := `
		SELECT cart_id
		FROM carts
		WHERE customer_id = $1
		FOR UPDATE
	`
	var cartID int64
	err := q.QueryRowContext(ctx, query, customerID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("cart for customer %d: %w", customerID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to lock cart: %w", err)
	}
	return cartID, nil
}

func productStock(ctx context.Context, q querier, productID int64) (string, int, error) {
	query := `
		SELECT p.product_name, COALESCE(i.quantity_in_stock, 0)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.product_id
		WHERE p.product_id = $1
	`
	var name string
	var stock int
	err := q.QueryRowContext(ctx, query, productID).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return "", 0, fmt.Errorf("failed to query product stock: %w", err)
	}
	return name, stock, nil
}
