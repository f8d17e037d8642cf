package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type ProductRepository struct {
	DB *db.Postgres
}

func (r ProductRepository) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO products (name, category, price, track_stock, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING id, name, category, price, track_stock, stock, created_at, updated_at
	`, p.Name, p.Category, p.PriceCents, p.TrackStock, p.Stock)
	return scanProduct(row)
}

func (r ProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, category, price, track_stock, stock, created_at, updated_at
		FROM products
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	return scanProduct(row)
}

func (r ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, category, price, track_stock, stock, created_at, updated_at
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r ProductRepository) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE products
		SET name=$2, category=$3, price=$4, track_stock=$5, stock=$6, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING id, name, category, price, track_stock, stock, created_at, updated_at
	`, p.ID, p.Name, p.Category, p.PriceCents, p.TrackStock, p.Stock)
	return scanProduct(row)
}

func (r ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE products SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.TrackStock, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
