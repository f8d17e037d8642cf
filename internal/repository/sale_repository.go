package repository

import (
	"context"
	"time"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type SaleRepository struct {
	DB *db.Postgres
}

func (r SaleRepository) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sales (id, code, amount, payment_method, session_id, sold_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, sale.ID, sale.Code, sale.AmountCents, string(sale.PaymentMethod), sale.SessionID, sale.SoldBy, sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range sale.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, product_id, name, price, qty)
			VALUES ($1,$2,$3,$4,$5)
		`, sale.ID, item.ProductID, item.Name, item.PriceCents, item.Qty)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r SaleRepository) SalesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, code, amount, payment_method, session_id, sold_by, created_at
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		var method string
		if err := rows.Scan(&s.ID, &s.Code, &s.AmountCents, &method, &s.SessionID, &s.SoldBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.PaymentMethod = domain.PaymentMethod(method)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := r.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (r SaleRepository) saleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT product_id, name, price, qty
		FROM sale_items
		WHERE sale_id=$1
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SaleItem
	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
