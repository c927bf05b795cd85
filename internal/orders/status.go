package orders

import (
	"fmt"

	"github.com/ZNilakshi/clothify/internal/models"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (models.OrderStatus, error) {
	switch models.OrderStatus(s) {
	case models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderCancelled:
		return models.OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrBusinessRule, s)
}

// IsTerminal reports whether no further transition is allowed from s.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderCompleted || s == models.OrderCancelled
}

// CanTransition encodes the legal order lifecycle:
// PENDING -> PROCESSING -> COMPLETED, with cancellation allowed from
// PENDING and PROCESSING. COMPLETED and CANCELLED accept nothing.
func CanTransition(from, to models.OrderStatus) bool {
	switch from {
	case models.OrderPending:
		return to == models.OrderProcessing || to == models.OrderCancelled
	case models.OrderProcessing:
		return to == models.OrderCompleted || to == models.OrderCancelled
	default:
		return false
	}
}
