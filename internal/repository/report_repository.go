package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ZNilakshi/clothify/internal/models"
)

type reportRepo struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepo{db: db}
}

// SalesReport totals non-cancelled orders in the period. Cancelled orders are
// excluded because their payments were refunded.
func (r *reportRepo) SalesReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE order_date >= $1 AND order_date < $2
		  AND status <> $3
	`
	report := &models.SalesReport{From: from, To: to}
	err := r.db.QueryRowContext(ctx, query, from, to, models.OrderCancelled).
		Scan(&report.OrderCount, &report.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	return report, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	query := `
		SELECT oi.product_id, p.product_name, SUM(oi.quantity) AS units, SUM(oi.line_total) AS revenue
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE o.status <> $1
		GROUP BY oi.product_id, p.product_name
		ORDER BY units DESC, oi.product_id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.OrderCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var sales []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.UnitsSold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		sales = append(sales, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sales: %w", err)
	}
	return sales, nil
}
