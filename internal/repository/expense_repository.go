package repository

import (
	"context"
	"time"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type ExpenseRepository struct {
	DB *db.Postgres
}

func (r ExpenseRepository) CreateExpense(ctx context.Context, exp domain.Expense) (*domain.Expense, error) {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO expenses (id, title, amount, category, spent_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, exp.ID, exp.Title, exp.AmountCents, exp.Category, exp.SpentBy, exp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r ExpenseRepository) ExpensesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Expense, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, title, amount, category, spent_by, created_at
		FROM expenses
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.AmountCents, &e.Category, &e.SpentBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
