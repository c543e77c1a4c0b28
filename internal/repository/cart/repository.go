package cart

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// MutateFunc edits a locked cart in memory. It reports whether anything changed; unchanged
// carts are not written back.
type MutateFunc func(cart *domain.Cart) (changed bool, err error)

type Repository interface {
	CreateIfAbsent(ctx context.Context, cartID string) (cart *domain.Cart, created bool, err error)
	GetByID(ctx context.Context, cartID string) (*domain.Cart, error)
	List(ctx context.Context) ([]domain.Cart, error)
	Mutate(ctx context.Context, cartID string, fn MutateFunc) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
	ClearIfUnmodifiedSince(ctx context.Context, cartID string, since time.Time) (bool, error)
}
