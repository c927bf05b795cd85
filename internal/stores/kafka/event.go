package kafka

import (
	"time"

	"github.com/ZNilakshi/clothify/internal/models"
)

const (
	TopicOrderCreated       = `checkout-service.order-created`
	TopicOrderStatusChanged = `checkout-service.order-status-changed`
)

// OrderCreatedEvent carries everything the notification worker needs to
// render the confirmation email/SMS without calling back into this service.
type OrderCreatedEvent struct {
	EventID      string        `json:"event_id"`
	OrderID      string        `json:"order_id"`
	CustomerID   int64         `json:"customer_id"`
	TotalAmount  string        `json:"total_amount"`
	Status       string        `json:"status"`
	Items        []OrderedItem `json:"items"`
	ContactEmail string        `json:"contact_email"`
	ContactPhone string        `json:"contact_phone"`
	CreatedAt    time.Time     `json:"created_at"`
}

type OrderedItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type OrderStatusChangedEvent struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

func NewOrderCreatedEvent(eventID string, o *models.Order, email, phone string) OrderCreatedEvent {
	items := make([]OrderedItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return OrderCreatedEvent{
		EventID:      eventID,
		OrderID:      o.OrderID,
		CustomerID:   o.CustomerID,
		TotalAmount:  o.TotalAmount.StringFixed(2),
		Status:       string(o.Status),
		Items:        items,
		ContactEmail: email,
		ContactPhone: phone,
		CreatedAt:    time.Now().UTC(),
	}
}
