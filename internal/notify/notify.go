// Package notify is the fire-and-forget boundary between the checkout core
// and the notification pipeline. Enqueueing never blocks the caller and
// publish failures are logged, never surfaced: a lost notification must not
// fail or roll back an order.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/stores/kafka"
	"github.com/ZNilakshi/clothify/pkg/logkey"
)

// Publisher is what the dispatcher needs from the kafka layer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

const (
	queueSize      = 256
	publishTimeout = 5 * time.Second
)

type event struct {
	topic   string
	key     string
	payload any
}

type Dispatcher struct {
	publisher Publisher
	queue     chan event
	wg        sync.WaitGroup
	once      sync.Once
}

// NewDispatcher starts the background worker. A nil publisher is allowed and
// turns the dispatcher into a log-only sink, which keeps local development
// working without a broker.
func NewDispatcher(publisher Publisher) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		queue:     make(chan event, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) OrderCreated(order *models.Order, email, phone string) {
	ev := kafka.NewOrderCreatedEvent(uuid.NewString(), order, email, phone)
	d.enqueue(event{topic: kafka.TopicOrderCreated, key: order.OrderID, payload: ev})
}

func (d *Dispatcher) StatusChanged(order *models.Order, oldStatus models.OrderStatus) {
	ev := kafka.OrderStatusChangedEvent{
		EventID:    uuid.NewString(),
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(order.Status),
		ChangedAt:  time.Now().UTC(),
	}
	d.enqueue(event{topic: kafka.TopicOrderStatusChanged, key: order.OrderID, payload: ev})
}

func (d *Dispatcher) enqueue(ev event) {
	select {
	case d.queue <- ev:
	default:
		// Queue full. Dropping is acceptable here; blocking the checkout
		// caller is not.
		slog.Warn("notification queue full, dropping event",
			slog.String(logkey.Topic, ev.topic), slog.String(logkey.OrderID, ev.key))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.publish(ev)
	}
}

func (d *Dispatcher) publish(ev event) {
	data, err := json.Marshal(ev.payload)
	if err != nil {
		slog.Error("failed to marshal notification event",
			slog.String(logkey.Topic, ev.topic), slog.String(logkey.ERROR, err.Error()))
		return
	}

	if d.publisher == nil {
		slog.Info("notification event (no broker configured)",
			slog.String(logkey.Topic, ev.topic), slog.String(logkey.OrderID, ev.key))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, ev.topic, []byte(ev.key), data); err != nil {
		slog.Error("failed to publish notification event",
			slog.String(logkey.Topic, ev.topic),
			slog.String(logkey.OrderID, ev.key),
			slog.String(logkey.ERROR, err.Error()))
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}
