// Package cart exposes the cart aggregate: add/update/remove lines, clear,
// and the priced snapshot view. Stock checks here are advisory; the real
// reservation happens at checkout.
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/pricing"
	"github.com/ZNilakshi/clothify/internal/repository"
)

type Service struct {
	products repository.ProductRepository
	carts    repository.CartRepository
}

func NewService(products repository.ProductRepository, carts repository.CartRepository) *Service {
	return &Service{products: products, carts: carts}
}

func (s *Service) AddLine(ctx context.Context, customerID, productID int64, quantity int) (*models.CartSnapshot, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if err := s.carts.AddLine(ctx, customerID, productID, quantity); err != nil {
		return nil, err
	}
	return s.View(ctx, customerID)
}

func (s *Service) UpdateLineQuantity(ctx context.Context, customerID, lineID int64, quantity int) (*models.CartSnapshot, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if err := s.carts.UpdateLineQuantity(ctx, customerID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.View(ctx, customerID)
}

func (s *Service) RemoveLine(ctx context.Context, customerID, lineID int64) (*models.CartSnapshot, error) {
	if err := s.carts.RemoveLine(ctx, customerID, lineID); err != nil {
		return nil, err
	}
	return s.View(ctx, customerID)
}

func (s *Service) Clear(ctx context.Context, customerID int64) error {
	return s.carts.Clear(ctx, customerID)
}

// View prices each line through the same calculator the checkout uses, so the
// previewed total always matches the order total (before shipping).
func (s *Service) View(ctx context.Context, customerID int64) (*models.CartSnapshot, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.CartSnapshot{
		CartID:      cart.CartID,
		CustomerID:  cart.CustomerID,
		TotalAmount: decimal.Zero,
		LineCount:   len(cart.Lines),
	}
	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		priced := pricing.ComputeLine(product.SellingPrice, product.DiscountPrice, line.Quantity)
		snapshot.Lines = append(snapshot.Lines, models.CartLineView{
			LineID:    line.LineID,
			ProductID: line.ProductID,
			Name:      product.Name,
			UnitPrice: priced.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: priced.LineTotal,
		})
		snapshot.TotalAmount = snapshot.TotalAmount.Add(priced.LineTotal)
	}
	return snapshot, nil
}
