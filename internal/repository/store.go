// Package repository implements the persistence contract on PostgreSQL via
// pgx. Row lookups map pgx.ErrNoRows to domain.ErrNotFound and unique
// violations to domain.ErrConflict so callers stay backend-agnostic.
package repository

import (
	"context"

	"coworkpos-backend/internal/db"
)

// Store composes the per-entity repositories into the full persistence
// collaborator.
type Store struct {
	SaleRepository
	ExpenseRepository
	ReportRepository
	CashSessionRepository
	CoworkingRepository
	ProductRepository
	UserRepository

	pg *db.Postgres
}

func NewStore(pg *db.Postgres) *Store {
	return &Store{
		SaleRepository:        SaleRepository{DB: pg},
		ExpenseRepository:     ExpenseRepository{DB: pg},
		ReportRepository:      ReportRepository{DB: pg},
		CashSessionRepository: CashSessionRepository{DB: pg},
		CoworkingRepository:   CoworkingRepository{DB: pg},
		ProductRepository:     ProductRepository{DB: pg},
		UserRepository:        UserRepository{DB: pg},
		pg:                    pg,
	}
}

// Health checks the database connectivity.
func (s *Store) Health(ctx context.Context) error {
	return s.pg.Health(ctx)
}
