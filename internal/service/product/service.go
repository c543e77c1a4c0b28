package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

type Service struct {
	repo         productRepo
	imageBaseURL string
	logger       *zap.Logger
}

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error)
	Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error)
}

func New(repo productRepo, imageBaseURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logger.Named("catalog"),
	}
}

// UpsertInput is an admin add or edit. A nil Attributes keeps the stored attribute prices.
type UpsertInput struct {
	Product    domain.Product
	Attributes []domain.AttributePrice
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = s.present(p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.Invalidf("item id must be a positive integer")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.present(*p)
	return &out, nil
}

// ListAttributePrices returns the variant prices of a product. A product without any
// is reported as not found.
func (s *Service) ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error) {
	if productID <= 0 {
		return nil, domain.Invalidf("item id must be a positive integer")
	}
	prices, err := s.repo.ListAttributePrices(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, domain.ErrNotFound
	}
	return prices, nil
}

// Create adds a product. A zero ID lets the store allocate one; an ID that is
// already taken is rejected, edits go through Update.
func (s *Service) Create(ctx context.Context, in UpsertInput) (*domain.Product, error) {
	if in.Product.ID < 0 {
		return nil, domain.Invalidf("item id must not be negative")
	}
	if in.Product.ID > 0 {
		_, err := s.repo.GetByID(ctx, in.Product.ID)
		switch {
		case err == nil:
			return nil, domain.Invalidf("item %d already exists", in.Product.ID)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	return s.upsert(ctx, in)
}

// Update edits an existing product; ErrProductNotFound when it does not exist.
func (s *Service) Update(ctx context.Context, id int, in UpsertInput) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.Invalidf("item id must be a positive integer")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	in.Product.ID = id
	return s.upsert(ctx, in)
}

func (s *Service) upsert(ctx context.Context, in UpsertInput) (*domain.Product, error) {
	p := in.Product
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, domain.Invalidf("title is required")
	}
	if p.Price < 0 {
		return nil, domain.Invalidf("price must not be negative")
	}
	var attributes []domain.AttributePrice
	if in.Attributes != nil {
		attributes = make([]domain.AttributePrice, 0, len(in.Attributes))
	}
	seen := make(map[string]struct{}, len(in.Attributes))
	for i, a := range in.Attributes {
		value := strings.TrimSpace(a.AttributeValue)
		if value == "" {
			return nil, domain.Invalidf("attributes[%d].attributeValue is required", i)
		}
		if a.Price < 0 {
			return nil, domain.Invalidf("attributes[%d].price must not be negative", i)
		}
		if _, dup := seen[value]; dup {
			return nil, domain.Invalidf("attribute %q listed twice", value)
		}
		seen[value] = struct{}{}
		attributes = append(attributes, domain.AttributePrice{ProductID: p.ID, AttributeValue: value, Price: a.Price})
	}

	saved, err := s.repo.Upsert(ctx, p, attributes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("product saved",
		zap.Int("product_id", saved.ID),
		zap.String("title", saved.Title),
		zap.Int("attributes", len(attributes)),
	)
	out := s.present(*saved)
	return &out, nil
}

func (s *Service) present(p domain.Product) domain.Product {
	p.ImageURL = domain.ImageURL(s.imageBaseURL, p.ImageURL)
	return p
}
