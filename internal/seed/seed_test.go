package seed

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCatalog struct {
	products   map[int]domain.Product
	attributes map[int][]domain.AttributePrice
	err        error
}

func (m *memCatalog) Upsert(_ context.Context, p domain.Product, attrs []domain.AttributePrice) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.products[p.ID] = p
	if attrs != nil {
		m.attributes[p.ID] = attrs
	}
	return &p, nil
}

type memCarts struct {
	carts map[string]*domain.Cart
}

func (m *memCarts) CreateIfAbsent(_ context.Context, id string) (*domain.Cart, bool, error) {
	if c, ok := m.carts[id]; ok {
		return c, false, nil
	}
	c := &domain.Cart{ID: id, Items: []domain.LineItem{}}
	m.carts[id] = c
	return c, true, nil
}

func (m *memCarts) Mutate(_ context.Context, id string, fn cartrepo.MutateFunc) (*domain.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if changed {
		c.RecalculateTotals()
	}
	return c, nil
}

func TestApply_SeedsCatalogAndSampleCart(t *testing.T) {
	catalog := &memCatalog{products: map[int]domain.Product{}, attributes: map[int][]domain.AttributePrice{}}
	carts := &memCarts{carts: map[string]*domain.Cart{}}

	require.NoError(t, Apply(context.Background(), catalog, carts, "http://localhost:8080", nil))

	assert.Len(t, catalog.products, 10)
	require.Len(t, catalog.attributes[1], 3)
	assert.Equal(t, 36.50, catalog.attributes[1][2].Price)
	assert.Len(t, catalog.attributes[6], 3)
	assert.Nil(t, catalog.attributes[2])

	cart := carts.carts[SampleCartID]
	require.NotNil(t, cart)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.TotalQuantity)
	assert.Equal(t, 72.5, cart.TotalPrice)
	assert.Equal(t, "http://localhost:8080/images/otter.png", cart.Items[0].ImageURL)
}

func TestApply_LeavesExistingCartAlone(t *testing.T) {
	catalog := &memCatalog{products: map[int]domain.Product{}, attributes: map[int][]domain.AttributePrice{}}
	existing := &domain.Cart{ID: SampleCartID, Items: []domain.LineItem{{ProductID: 5, Price: 9.99, Quantity: 1}}}
	existing.RecalculateTotals()
	carts := &memCarts{carts: map[string]*domain.Cart{SampleCartID: existing}}

	require.NoError(t, Apply(context.Background(), catalog, carts, "", nil))
	assert.Len(t, carts.carts[SampleCartID].Items, 1)
	assert.Equal(t, 5, carts.carts[SampleCartID].Items[0].ProductID)
}

func TestApply_CatalogError(t *testing.T) {
	catalog := &memCatalog{err: errors.New("db down")}
	carts := &memCarts{carts: map[string]*domain.Cart{}}

	err := Apply(context.Background(), catalog, carts, "", nil)
	require.Error(t, err)
	assert.Empty(t, carts.carts)
}
