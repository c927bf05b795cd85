package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZNilakshi/clothify/internal/models"
)

type customerRepo struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `
		SELECT customer_id, name, email, phone
		FROM customers
		WHERE customer_id = $1
	`
	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.CustomerID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return &c, nil
}

type cityRepo struct {
	db *sql.DB
}

func NewCityRepository(db *sql.DB) CityRepository {
	return &cityRepo{db: db}
}

func (r *cityRepo) GetByID(ctx context.Context, id int64) (*models.City, error) {
	query := `
		SELECT city_id, name
		FROM cities
		WHERE city_id = $1
	`
	var c models.City
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.CityID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("city %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get city %d: %w", id, err)
	}
	return &c, nil
}

type productRepo struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

// GetByID returns the product together with its current stock level. The
// stock figure is a snapshot; only the inventory ledger may change it.
func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT p.product_id, p.product_name, p.selling_price, p.discount_price, p.is_active,
		       COALESCE(i.quantity_in_stock, 0)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.product_id
		WHERE p.product_id = $1
	`
	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ProductID, &p.Name, &p.SellingPrice, &p.DiscountPrice, &p.IsActive, &p.Stock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}
