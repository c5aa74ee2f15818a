package port

import (
	"context"

	"github.com/buensabor/storefront/internal/core/domain"
)

type DatabaseRepository interface {
	// CreateOrder persists a confirmed order and its line items atomically
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder retrieves an order with its line items, nil if not found
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}
