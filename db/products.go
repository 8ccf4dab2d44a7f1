package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/products"
)

const productColumns = `id, name, price, category, stock, created_at, updated_at`

// ProductRepository is the PostgreSQL products.ProductStore.
type ProductRepository struct {
	db Querier
}

var _ products.ProductStore = (*ProductRepository)(nil)

// NewProductRepository creates a ProductRepository.
func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

// List matches the category as a case-insensitive substring. strpos avoids
// having to escape LIKE wildcards; LIMIT NULL means no limit.
func (r *ProductRepository) List(ctx context.Context, f products.Filter) ([]*products.Product, int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE $1 = '' OR strpos(lower(category), lower($1)) > 0
		 ORDER BY id
		 LIMIT NULLIF($2::bigint, 0)`,
		f.Category, int64(f.Limit),
	)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list products", err)
	}
	defer rows.Close()

	out := []*products.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list products", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count products", err)
	}
	return out, int(total), nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*products.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, productError("failed to get product", err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *products.Product) (*products.Product, error) {
	created, err := scanProduct(r.db.QueryRow(ctx,
		`INSERT INTO products (name, price, category, stock) VALUES ($1, $2, $3, $4) RETURNING `+productColumns,
		p.Name, p.Price, p.Category, p.Stock,
	))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to insert product", err)
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *products.Product) (*products.Product, error) {
	updated, err := scanProduct(r.db.QueryRow(ctx,
		`UPDATE products SET name = $1, price = $2, category = $3, stock = $4, updated_at = now()
		 WHERE id = $5 RETURNING `+productColumns,
		p.Name, p.Price, p.Category, p.Stock, p.ID,
	))
	if err != nil {
		return nil, productError("failed to update product", err)
	}
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(apperror.CodeProductNotFound, "product not found")
	}
	return nil
}

func scanProduct(row pgx.Row) (*products.Product, error) {
	var p products.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func productError(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFoundError(apperror.CodeProductNotFound, "product not found")
	}
	return apperror.NewDatabaseError(msg, err)
}
