package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"

	"go.uber.org/zap"
)

// CatalogWriter stores a product together with its attribute prices.
type CatalogWriter interface {
	Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error)
}

type CartWriter interface {
	CreateIfAbsent(ctx context.Context, cartID string) (*domain.Cart, bool, error)
	Mutate(ctx context.Context, cartID string, fn cartrepo.MutateFunc) (*domain.Cart, error)
}

type productSeed struct {
	Product    domain.Product
	Attributes []domain.AttributePrice
}

// SampleCartID is the demo cart created by Apply.
const SampleCartID = "1902938"

func sizes(small, medium, large float64) []domain.AttributePrice {
	return []domain.AttributePrice{
		{AttributeValue: "Small", Price: small},
		{AttributeValue: "Medium", Price: medium},
		{AttributeValue: "Large", Price: large},
	}
}

func catalog() []productSeed {
	return []productSeed{
		{Product: domain.Product{ID: 1, Title: "Cute Otter Amigurumi", Category: "Amigurumi", Price: 28.50, ImageURL: "images/otter.png",
			Description: "An adorable handmade crochet otter plushie, perfect for gifting or collecting. Features a little blue heart."},
			Attributes: sizes(28.50, 32.50, 36.50)},
		{Product: domain.Product{ID: 2, Title: "Lily Cup Coaster Set", Category: "Home Decor", Price: 35.00, ImageURL: "images/lily_coasters.png",
			Description: "A beautiful set of crochet lily cup coasters in pastel shades, adding a touch of elegance to your home."}},
		{Product: domain.Product{ID: 3, Title: "Crochet Puppy Keychain", Category: "Keychains", Price: 12.75, ImageURL: "images/puppy_keychain.png",
			Description: "A charming crochet puppy head keychain, meticulously crafted with expressive eyes. Great for dog lovers!"}},
		{Product: domain.Product{ID: 4, Title: "Blue Whale Pouch", Category: "Bags & Pouches", Price: 22.00, ImageURL: "images/whale_pouch.png",
			Description: "A cute crochet pouch shaped like a whale, with a drawstring closure and a little starfish detail. Ideal for small treasures."}},
		{Product: domain.Product{ID: 5, Title: "Pink Lace Bow", Category: "Accessories", Price: 9.99, ImageURL: "images/pink_bow.png",
			Description: "A delicate handmade crochet bow in soft pink, perfect as a hair accessory or embellishment."}},
		{Product: domain.Product{ID: 6, Title: "Crochet Sylveon Plushie", Category: "Amigurumi", Price: 45.00, ImageURL: "images/sylveon.png",
			Description: "A detailed crochet plushie of the beloved Sylveon character, featuring its signature ribbons."},
			Attributes: sizes(45.00, 50.00, 55.00)},
		{Product: domain.Product{ID: 7, Title: "Brown Bear Keychain", Category: "Keychains", Price: 11.50, ImageURL: "images/bear_keychain.png",
			Description: "An adorable crochet bear head keychain with a sturdy metal ring, a perfect companion for your keys."}},
		{Product: domain.Product{ID: 8, Title: "Potted Succulent Amigurumi", Category: "Home Decor", Price: 18.00, ImageURL: "images/succulent.png",
			Description: "A charming crochet succulent in a small pot, a low-maintenance plant that adds greenery to any space."}},
		{Product: domain.Product{ID: 9, Title: "Squishy Pochacco Macaron", Category: "Amigurumi", Price: 15.00, ImageURL: "images/pochacco_macaron.png",
			Description: "A delightful crochet macaron featuring the popular Sanrio character Pochacco, soft and squishy."}},
		{Product: domain.Product{ID: 10, Title: "Cute Doggo Plushie", Category: "Amigurumi", Price: 20.00, ImageURL: "images/doggo_plushie.png",
			Description: "A small, lovable crochet dog plushie, perfect for cuddling or as a desk companion. Features floppy ears."}},
	}
}

// Apply upserts the demo catalog and creates the sample cart when it does not exist yet.
// Running it twice leaves the same data behind.
func Apply(ctx context.Context, products CatalogWriter, carts CartWriter, imageBaseURL string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	seeds := catalog()
	byID := make(map[int]domain.Product, len(seeds))
	for _, s := range seeds {
		saved, err := products.Upsert(ctx, s.Product, s.Attributes)
		if err != nil {
			return fmt.Errorf("upsert product %d: %w", s.Product.ID, err)
		}
		byID[saved.ID] = *saved
	}
	logger.Info("catalog seeded", zap.Int("products", len(seeds)))

	_, created, err := carts.CreateIfAbsent(ctx, SampleCartID)
	if err != nil {
		return fmt.Errorf("create sample cart: %w", err)
	}
	if !created {
		logger.Info("sample cart already present", zap.String("cart_id", SampleCartID))
		return nil
	}

	line := func(id, qty int, attribute string, price float64) domain.LineItem {
		p := byID[id]
		return domain.LineItem{
			ProductID:         p.ID,
			Title:             p.Title,
			ImageURL:          domain.ImageURL(imageBaseURL, p.ImageURL),
			Price:             price,
			Quantity:          qty,
			SelectedAttribute: attribute,
		}
	}
	if _, err := carts.Mutate(ctx, SampleCartID, func(c *domain.Cart) (bool, error) {
		c.Items = []domain.LineItem{
			line(1, 1, "Small", 28.50),
			line(4, 2, "", 22.00),
		}
		return true, nil
	}); err != nil {
		return fmt.Errorf("fill sample cart: %w", err)
	}
	logger.Info("sample cart seeded", zap.String("cart_id", SampleCartID))
	return nil
}
