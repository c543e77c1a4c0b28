package cart

import (
	"context"
	"strings"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"

	"go.uber.org/zap"
)

// UnsetPrice is the selectedPrice sentinel meaning "use the catalog price".
const UnsetPrice = -1.0

type Service struct {
	repo         cartRepo
	productRepo  productRepo
	imageBaseURL string
	logger       *zap.Logger
}

type cartRepo interface {
	CreateIfAbsent(ctx context.Context, cartID string) (*domain.Cart, bool, error)
	GetByID(ctx context.Context, cartID string) (*domain.Cart, error)
	List(ctx context.Context) ([]domain.Cart, error)
	Mutate(ctx context.Context, cartID string, fn cartrepo.MutateFunc) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Product, error)
}

// New builds the cart service. imageBaseURL prefixes the product's stored image path in
// line item snapshots.
func New(repo cartRepo, productRepo productRepo, imageBaseURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		productRepo:  productRepo,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logger.Named("cart"),
	}
}

type AddItemInput struct {
	ProductID         int      `json:"productId"`
	Quantity          int      `json:"quantity"`
	SelectedAttribute string   `json:"selectedAttribute"`
	SelectedPrice     *float64 `json:"selectedPrice"`
}

// CreateOrGet returns the cart for cartID, creating an empty one first if needed.
// created reports whether this call created it.
func (s *Service) CreateOrGet(ctx context.Context, cartID string) (*domain.Cart, bool, error) {
	if err := requireCartID(cartID); err != nil {
		return nil, false, err
	}
	cart, created, err := s.repo.CreateIfAbsent(ctx, cartID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("cart created", zap.String("cart_id", cartID))
	}
	return cart, created, nil
}

func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := requireCartID(cartID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cartID)
}

func (s *Service) List(ctx context.Context) ([]domain.Cart, error) {
	return s.repo.List(ctx)
}

// AddItem merges the product into the cart. An item with the same product and attribute
// accumulates quantity and takes the newly computed price; otherwise a new item is appended.
func (s *Service) AddItem(ctx context.Context, cartID string, in AddItemInput) (*domain.Cart, error) {
	if err := requireCartID(cartID); err != nil {
		return nil, err
	}
	if in.ProductID <= 0 {
		return nil, domain.Invalidf("productId must be a positive integer")
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalidf("quantity must be a positive integer")
	}
	if in.SelectedPrice != nil && *in.SelectedPrice != UnsetPrice && *in.SelectedPrice < 0 {
		return nil, domain.Invalidf("selectedPrice must not be negative")
	}

	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	price := resolvePrice(*product, in.SelectedPrice)

	cart, err := s.repo.Mutate(ctx, cartID, func(c *domain.Cart) (bool, error) {
		c.Items = mergeItem(c.Items, domain.LineItem{
			ProductID:         product.ID,
			Title:             product.Title,
			ImageURL:          domain.ImageURL(s.imageBaseURL, product.ImageURL),
			Price:             price,
			Quantity:          in.Quantity,
			SelectedAttribute: in.SelectedAttribute,
		})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("item added",
		zap.String("cart_id", cartID),
		zap.Int("product_id", in.ProductID),
		zap.Int("quantity", in.Quantity),
		zap.String("attribute", in.SelectedAttribute),
		zap.Float64("price", price),
	)
	return cart, nil
}

// RemoveItem drops every item for productID regardless of attribute. removed is false when
// the cart held no such item; the cart is then returned unchanged.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID int) (*domain.Cart, bool, error) {
	if err := requireCartID(cartID); err != nil {
		return nil, false, err
	}
	if productID <= 0 {
		return nil, false, domain.Invalidf("productId must be a positive integer")
	}

	removed := false
	cart, err := s.repo.Mutate(ctx, cartID, func(c *domain.Cart) (bool, error) {
		kept := make([]domain.LineItem, 0, len(c.Items))
		for _, item := range c.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		removed = len(kept) != len(c.Items)
		if removed {
			c.Items = kept
		}
		return removed, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !removed {
		s.logger.Info("item not in cart", zap.String("cart_id", cartID), zap.Int("product_id", productID))
		return cart, false, nil
	}
	s.logger.Info("item removed", zap.String("cart_id", cartID), zap.Int("product_id", productID))
	return cart, true, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := requireCartID(cartID); err != nil {
		return nil, err
	}
	cart, err := s.repo.Clear(ctx, cartID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("cart cleared", zap.String("cart_id", cartID))
	return cart, nil
}

func resolvePrice(p domain.Product, selected *float64) float64 {
	if selected == nil || *selected == UnsetPrice {
		return p.Price
	}
	return *selected
}

func mergeItem(items []domain.LineItem, add domain.LineItem) []domain.LineItem {
	for i := range items {
		if items[i].Matches(add.ProductID, add.SelectedAttribute) {
			items[i].Quantity += add.Quantity
			items[i].Price = add.Price
			return items
		}
	}
	return append(items, add)
}

func requireCartID(cartID string) error {
	if strings.TrimSpace(cartID) == "" {
		return domain.Invalidf("cart ID is required")
	}
	return nil
}
