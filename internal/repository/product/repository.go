package product

import (
	"context"

	"storefront/internal/domain"
)

// Repository reads and writes the catalog. Upsert replaces the product's attribute prices
// when attributes is non-nil and leaves them untouched when it is nil.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error)
	Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error)
}
