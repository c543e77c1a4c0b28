package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `order_number::text, shopper_name, cart_id, items, total_quantity, total_price, status, cart_cleared, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (order_number, shopper_name, cart_id, items, total_quantity, total_price, status, cart_cleared)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderColumns
	items := o.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	created, err := scanOrder(r.pool.QueryRow(ctx, q,
		o.OrderNumber,
		o.ShopperName,
		o.CartID,
		items,
		o.TotalQuantity,
		o.TotalPrice,
		o.Status,
		o.CartCleared,
	))
	if err != nil {
		return nil, fmt.Errorf("order repo: create %s: %w", o.OrderNumber, err)
	}
	return created, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListUncleared returns the oldest orders whose source cart reset has not been applied.
func (r *postgresRepo) ListUncleared(ctx context.Context, limit int) ([]domain.Order, error) {
	return r.query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE NOT cart_cleared
ORDER BY created_at ASC
LIMIT $1
`, limit)
}

func (r *postgresRepo) MarkCartCleared(ctx context.Context, orderNumber string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET cart_cleared = true WHERE order_number = $1`, orderNumber)
	if err != nil {
		return fmt.Errorf("order repo: mark cleared %s: %w", orderNumber, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("order repo: query: %w", err)
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("order repo: scan: %w", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order repo: rows: %w", err)
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.OrderNumber,
		&o.ShopperName,
		&o.CartID,
		&o.Items,
		&o.TotalQuantity,
		&o.TotalPrice,
		&o.Status,
		&o.CartCleared,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if o.Items == nil {
		o.Items = []domain.LineItem{}
	}
	return &o, nil
}
