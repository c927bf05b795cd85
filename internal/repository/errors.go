package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("resource not found")

// InsufficientStockError reports a failed stock check or reservation. It
// carries the remaining stock so callers can show it to the client.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}
