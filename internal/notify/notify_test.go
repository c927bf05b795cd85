package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/stores/kafka"
)

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	fail     bool
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return assert.AnError
	}
	f.messages = append(f.messages, published{topic: topic, key: string(key), value: value})
	return nil
}

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.messages...)
}

func testOrder() *models.Order {
	total, _ := decimal.NewFromString("51.00")
	unit, _ := decimal.NewFromString("25.50")
	return &models.Order{
		OrderID:     "order-1",
		CustomerID:  1,
		OrderDate:   time.Now().UTC(),
		Status:      models.OrderPending,
		TotalAmount: total,
		Items: []models.OrderItem{
			{ProductID: 300, Quantity: 2, UnitPrice: unit, LineTotal: total},
		},
	}
}

func TestDispatcherPublishesOrderCreated(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub)

	d.OrderCreated(testOrder(), "amal@example.com", "0771234567")
	d.Close()

	msgs := pub.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, kafka.TopicOrderCreated, msgs[0].topic)
	assert.Equal(t, "order-1", msgs[0].key)

	var ev kafka.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(msgs[0].value, &ev))
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "order-1", ev.OrderID)
	assert.Equal(t, "amal@example.com", ev.ContactEmail)
	assert.Equal(t, "51.00", ev.TotalAmount)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, int64(300), ev.Items[0].ProductID)
}

func TestDispatcherPublishesStatusChanged(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub)

	order := testOrder()
	order.Status = models.OrderCancelled
	d.StatusChanged(order, models.OrderPending)
	d.Close()

	msgs := pub.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, kafka.TopicOrderStatusChanged, msgs[0].topic)

	var ev kafka.OrderStatusChangedEvent
	require.NoError(t, json.Unmarshal(msgs[0].value, &ev))
	assert.Equal(t, "PENDING", ev.OldStatus)
	assert.Equal(t, "CANCELLED", ev.NewStatus)
}

func TestDispatcherSwallowsPublishFailure(t *testing.T) {
	pub := &fakePublisher{fail: true}
	d := NewDispatcher(pub)

	// Must not panic or block the caller.
	d.OrderCreated(testOrder(), "amal@example.com", "")
	d.Close()
	assert.Empty(t, pub.all())
}

func TestDispatcherNilPublisher(t *testing.T) {
	d := NewDispatcher(nil)
	d.OrderCreated(testOrder(), "amal@example.com", "")
	d.StatusChanged(testOrder(), models.OrderPending)
	d.Close()
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&fakePublisher{})
	d.Close()
	d.Close()
}
