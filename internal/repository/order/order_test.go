package order

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"

	"github.com/google/uuid"
)

func TestPostgres_CreateListAndMarkCleared(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(ctx, t))

	number := uuid.NewString()
	created, err := repo.Create(ctx, domain.Order{
		OrderNumber:   number,
		ShopperName:   "Ada",
		CartID:        "c1",
		Items:         []domain.LineItem{{ProductID: 1, Title: "Otter", Price: 28.5, Quantity: 2}},
		TotalQuantity: 2,
		TotalPrice:    57,
		Status:        domain.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.OrderNumber != number || created.Status != domain.OrderStatusPending || created.CartCleared {
		t.Fatalf("unexpected order %+v", created)
	}
	if len(created.Items) != 1 || created.Items[0].Title != "Otter" {
		t.Fatalf("items not round-tripped: %+v", created.Items)
	}

	uncleared, err := repo.ListUncleared(ctx, 10)
	if err != nil {
		t.Fatalf("ListUncleared: %v", err)
	}
	if len(uncleared) != 1 || uncleared[0].OrderNumber != number {
		t.Fatalf("expected the new order to be uncleared, got %+v", uncleared)
	}

	if err := repo.MarkCartCleared(ctx, number); err != nil {
		t.Fatalf("MarkCartCleared: %v", err)
	}
	uncleared, err = repo.ListUncleared(ctx, 10)
	if err != nil {
		t.Fatalf("ListUncleared after mark: %v", err)
	}
	if len(uncleared) != 0 {
		t.Fatalf("expected no uncleared orders, got %d", len(uncleared))
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || !all[0].CartCleared {
		t.Fatalf("unexpected orders %+v", all)
	}
}

func TestPostgres_DuplicateOrderNumberFails(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(ctx, t))

	o := domain.Order{
		OrderNumber:   uuid.NewString(),
		ShopperName:   "Ada",
		CartID:        "c1",
		Items:         []domain.LineItem{{ProductID: 1, Price: 1, Quantity: 1}},
		TotalQuantity: 1,
		TotalPrice:    1,
		Status:        domain.OrderStatusPending,
	}
	if _, err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, o); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestPostgres_MarkClearedUnknownOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(ctx, t))

	if err := repo.MarkCartCleared(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
