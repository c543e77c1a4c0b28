package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `cart_id, items, total_quantity, total_price, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) CreateIfAbsent(ctx context.Context, cartID string) (*domain.Cart, bool, error) {
	const q = `
INSERT INTO shopping_carts (cart_id)
VALUES ($1)
ON CONFLICT (cart_id) DO NOTHING
RETURNING ` + cartColumns
	cart, err := scanCart(r.pool.QueryRow(ctx, q, cartID))
	if err == nil {
		return cart, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("cart repo: create %s: %w", cartID, err)
	}
	existing, err := r.GetByID(ctx, cartID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, cartID string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM shopping_carts WHERE cart_id = $1`
	cart, err := scanCart(r.pool.QueryRow(ctx, q, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("cart repo: get %s: %w", cartID, err)
	}
	return cart, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM shopping_carts ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("cart repo: list: %w", err)
	}
	defer rows.Close()

	result := []domain.Cart{}
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("cart repo: list scan: %w", err)
		}
		result = append(result, *cart)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart repo: list rows: %w", err)
	}
	return result, nil
}

// Mutate locks the cart row for the duration of fn so concurrent mutators of one cart
// serialize instead of overwriting each other. Totals are recomputed here, on the only
// path that writes items.
func (r *postgresRepo) Mutate(ctx context.Context, cartID string, fn MutateFunc) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("cart repo: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cart, err := scanCart(tx.QueryRow(ctx, `SELECT `+cartColumns+` FROM shopping_carts WHERE cart_id = $1 FOR UPDATE`, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("cart repo: lock %s: %w", cartID, err)
	}

	changed, err := fn(cart)
	if err != nil {
		return nil, err
	}
	if !changed {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("cart repo: commit %s: %w", cartID, err)
		}
		return cart, nil
	}

	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	cart.RecalculateTotals()

	updated, err := scanCart(tx.QueryRow(ctx, `
UPDATE shopping_carts
SET items = $2, total_quantity = $3, total_price = $4, updated_at = now()
WHERE cart_id = $1
RETURNING `+cartColumns, cartID, cart.Items, cart.TotalQuantity, cart.TotalPrice))
	if err != nil {
		return nil, fmt.Errorf("cart repo: update %s: %w", cartID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("cart repo: commit %s: %w", cartID, err)
	}
	return updated, nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	const q = `
UPDATE shopping_carts
SET items = '[]'::jsonb, total_quantity = 0, total_price = 0, updated_at = now()
WHERE cart_id = $1
RETURNING ` + cartColumns
	cart, err := scanCart(r.pool.QueryRow(ctx, q, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("cart repo: clear %s: %w", cartID, err)
	}
	return cart, nil
}

// ClearIfUnmodifiedSince empties the cart only when nothing touched it after since.
// It reports false when the cart is missing or was modified later.
func (r *postgresRepo) ClearIfUnmodifiedSince(ctx context.Context, cartID string, since time.Time) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE shopping_carts
SET items = '[]'::jsonb, total_quantity = 0, total_price = 0, updated_at = now()
WHERE cart_id = $1 AND updated_at <= $2
`, cartID, since)
	if err != nil {
		return false, fmt.Errorf("cart repo: conditional clear %s: %w", cartID, err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(
		&cart.ID,
		&cart.Items,
		&cart.TotalQuantity,
		&cart.TotalPrice,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	return &cart, nil
}
