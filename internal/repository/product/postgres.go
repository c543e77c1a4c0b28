package product

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const productColumns = `id, title, COALESCE(description, ''), COALESCE(category, ''), price, image_url, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.Int("id", id))
			return nil, domain.ErrProductNotFound
		}
		r.logger.Error("get", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_id, attribute_value, price
FROM product_attribute_prices
WHERE product_id = $1
ORDER BY price ASC, attribute_value ASC
`, productID)
	if err != nil {
		r.logger.Error("list attributes", zap.Int("product_id", productID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.AttributePrice{}
	for rows.Next() {
		var a domain.AttributePrice
		if err := rows.Scan(&a.ProductID, &a.AttributeValue, &a.Price); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Upsert inserts or updates by id. A zero id allocates the next free one.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if product.ID == 0 {
		if _, err := tx.Exec(ctx, `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return nil, err
		}
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM products`).Scan(&product.ID); err != nil {
			return nil, err
		}
	}

	saved, err := scanProduct(tx.QueryRow(ctx, `
INSERT INTO products (id, title, description, category, price, image_url)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    image_url = EXCLUDED.image_url
RETURNING `+productColumns,
		product.ID,
		product.Title,
		product.Description,
		product.Category,
		product.Price,
		product.ImageURL,
	))
	if err != nil {
		r.logger.Error("upsert", zap.Int("id", product.ID), zap.Error(err))
		return nil, err
	}

	if attributes != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM product_attribute_prices WHERE product_id = $1`, saved.ID); err != nil {
			return nil, err
		}
		for _, a := range attributes {
			if _, err := tx.Exec(ctx, `
INSERT INTO product_attribute_prices (product_id, attribute_value, price)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, attribute_value) DO UPDATE SET price = EXCLUDED.price
`, saved.ID, a.AttributeValue, a.Price); err != nil {
				return nil, fmt.Errorf("attribute %q: %w", a.AttributeValue, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("upserted", zap.Int("id", saved.ID), zap.String("title", saved.Title), zap.Int("attributes", len(attributes)))
	return saved, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
