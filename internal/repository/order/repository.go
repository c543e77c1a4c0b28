package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListUncleared(ctx context.Context, limit int) ([]domain.Order, error)
	MarkCartCleared(ctx context.Context, orderNumber string) error
}
