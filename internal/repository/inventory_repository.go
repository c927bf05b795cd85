package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZNilakshi/clothify/internal/models"
)

type inventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Reserve(ctx context.Context, productID int64, quantity int) error {
	return reserveStock(ctx, r.db, productID, quantity)
}

func (r *inventoryRepo) Restore(ctx context.Context, productID int64, quantity int) error {
	return restoreStock(ctx, r.db, productID, quantity)
}

func (r *inventoryRepo) LowStock(ctx context.Context) ([]models.InventoryLevel, error) {
	query := `
		SELECT product_id, quantity_in_stock, reorder_level
		FROM inventory
		WHERE quantity_in_stock <= reorder_level
		ORDER BY product_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	var levels []models.InventoryLevel
	for rows.Next() {
		var lv models.InventoryLevel
		if err := rows.Scan(&lv.ProductID, &lv.QuantityInStock, &lv.ReorderLevel); err != nil {
			return nil, fmt.Errorf("failed to scan inventory level: %w", err)
		}
		levels = append(levels, lv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory levels: %w", err)
	}
	return levels, nil
}

// reserveStock is the conditional decrement behind every reservation: the
// check and the decrement happen in one statement, so stock can never go
// negative no matter how reservations interleave.
func reserveStock(ctx context.Context, q querier, productID int64, quantity int) error {
	query := `
		UPDATE inventory
		SET quantity_in_stock = quantity_in_stock - $1, updated_at = NOW()
		WHERE product_id = $2 AND quantity_in_stock >= $1
	`
	res, err := q.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to reserve stock for product %d: %w", productID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read reserve result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: either the product has no inventory row or the stock
	// is short. Report which, with the remaining quantity.
	name, available, err := productStock(ctx, q, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to inspect stock for product %d: %w", productID, err)
	}
	return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: quantity, Available: available}
}

// restoreStock puts quantity back. No upper bound is enforced.
func restoreStock(ctx context.Context, q querier, productID int64, quantity int) error {
	query := `
		UPDATE inventory
		SET quantity_in_stock = quantity_in_stock + $1, updated_at = NOW()
		WHERE product_id = $2
	`
	res, err := q.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to restore stock for product %d: %w", productID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read restore result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inventory for product %d: %w", productID, ErrNotFound)
	}
	return nil
}
