// Package orders holds the checkout orchestrator and the order state machine.
// All order creation goes through Checkout; all later mutation goes through
// UpdateStatus, Cancel or ProcessPayment, each of which applies the same
// terminal-state guard.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/pricing"
	"github.com/ZNilakshi/clothify/internal/repository"
	"github.com/ZNilakshi/clothify/pkg/logkey"
)

const DeliveryMethodDelivery = "delivery"

// Notifier receives finalized orders and status changes. Implementations must
// not block; failures are theirs to log. A nil Notifier disables dispatch.
type Notifier interface {
	OrderCreated(order *models.Order, email, phone string)
	StatusChanged(order *models.Order, oldStatus models.OrderStatus)
}

type Service struct {
	customers   repository.CustomerRepository
	cities      repository.CityRepository
	products    repository.ProductRepository
	carts       repository.CartRepository
	orders      repository.OrderRepository
	notifier    Notifier
	shippingFee decimal.Decimal
}

func NewService(
	customers repository.CustomerRepository,
	cities repository.CityRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	notifier Notifier,
	shippingFee decimal.Decimal,
) *Service {
	return &Service{
		customers:   customers,
		cities:      cities,
		products:    products,
		carts:       carts,
		orders:      orders,
		notifier:    notifier,
		shippingFee: shippingFee,
	}
}

type CheckoutInput struct {
	CustomerID     int64
	CityID         *int64
	PaymentMethod  string
	DeliveryMethod string
	ContactEmail   string
	ContactPhone   string
}

// Checkout converts the customer's cart into an order. Steps 1-5 are
// validation only and leave no state behind on failure; the bundle commit is
// the single point where anything becomes durable. Notification is
// best-effort and cannot fail the checkout.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	if in.CityID != nil {
		if _, err := s.cities.GetByID(ctx, *in.CityID); err != nil {
			return nil, err
		}
	}

	// Price snapshot per line. The unit price recorded here is immune to
	// later product price changes.
	items := make([]models.OrderItem, 0, len(cart.Lines))
	total := decimal.Zero
	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		priced := pricing.ComputeLine(product.SellingPrice, product.DiscountPrice, line.Quantity)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: priced.UnitPrice,
			LineTotal: priced.LineTotal,
		})
		total = total.Add(priced.LineTotal)
	}

	shipping := decimal.Zero
	if in.DeliveryMethod == DeliveryMethodDelivery {
		shipping = s.shippingFee
		total = total.Add(shipping)
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderID:     uuid.NewString(),
		CustomerID:  in.CustomerID,
		CityID:      in.CityID,
		OrderDate:   now,
		Status:      models.OrderPending,
		TotalAmount: total,
		ShippingFee: shipping,
		Items:       items,
		Payment:     &models.Payment{Method: in.PaymentMethod, Status: models.PaymentPending},
		Sale:        &models.Sale{TransactionDate: now},
	}

	if err := s.orders.CreateBundle(ctx, order); err != nil {
		return nil, err
	}

	slog.Info("order created",
		slog.String(logkey.OrderID, order.OrderID),
		slog.Int64(logkey.CustomerID, order.CustomerID),
		slog.String("total_amount", order.TotalAmount.String()))

	if s.notifier != nil {
		s.notifier.OrderCreated(order, in.ContactEmail, in.ContactPhone)
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAll(ctx)
}

// UpdateStatus moves the order to newStatus if the state machine allows it.
// Completing an order also completes its payment. Moving to CANCELLED carries
// the same restock and refund as Cancel, whichever path the caller takes.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus string) (*models.Order, error) {
	target, err := ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	var oldStatus models.OrderStatus
	order, err := s.orders.Transition(ctx, orderID, func(o *models.Order) (bool, error) {
		if !CanTransition(o.Status, target) {
			return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
		}
		oldStatus = o.Status
		o.Status = target
		if target == models.OrderCompleted && o.Payment != nil {
			now := time.Now().UTC()
			o.Payment.Status = models.PaymentCompleted
			o.Payment.PaymentDate = &now
		}
		if target == models.OrderCancelled {
			if o.Payment != nil {
				o.Payment.Status = models.PaymentRefunded
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logAndNotify(order, oldStatus)
	return order, nil
}

// Cancel cancels a non-terminal order, restores every item's quantity to
// inventory (undoing the checkout reservation exactly) and refunds the
// payment. The restore happens in the same transaction as the status change.
func (s *Service) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	var oldStatus models.OrderStatus
	order, err := s.orders.Transition(ctx, orderID, func(o *models.Order) (bool, error) {
		if IsTerminal(o.Status) {
			return false, fmt.Errorf("%w: cannot cancel order with status %s", ErrInvalidTransition, o.Status)
		}
		oldStatus = o.Status
		o.Status = models.OrderCancelled
		if o.Payment != nil {
			o.Payment.Status = models.PaymentRefunded
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logAndNotify(order, oldStatus)
	return order, nil
}

// ProcessPayment marks the payment completed and advances the order to
// PROCESSING. It routes through the same transition rule as UpdateStatus, so
// terminal orders (and orders already past PENDING) are rejected.
func (s *Service) ProcessPayment(ctx context.Context, orderID string) (*models.Order, error) {
	var oldStatus models.OrderStatus
	order, err := s.orders.Transition(ctx, orderID, func(o *models.Order) (bool, error) {
		if o.Payment == nil {
			return false, fmt.Errorf("%w: no payment record for order", ErrBusinessRule)
		}
		if !CanTransition(o.Status, models.OrderProcessing) {
			return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, models.OrderProcessing)
		}
		oldStatus = o.Status
		now := time.Now().UTC()
		o.Payment.Status = models.PaymentCompleted
		o.Payment.PaymentDate = &now
		o.Status = models.OrderProcessing
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logAndNotify(order, oldStatus)
	return order, nil
}

func (s *Service) logAndNotify(order *models.Order, oldStatus models.OrderStatus) {
	slog.Info("order status changed",
		slog.String(logkey.OrderID, order.OrderID),
		slog.String("from", string(oldStatus)),
		slog.String("to", string(order.Status)))
	if s.notifier != nil {
		s.notifier.StatusChanged(order, oldStatus)
	}
}
