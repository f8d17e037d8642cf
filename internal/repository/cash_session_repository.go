package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type CashSessionRepository struct {
	DB *db.Postgres
}

// OpenCashSession inserts a new open session. A partial unique index on
// open rows makes the one-open-session invariant atomic under concurrency.
func (r CashSessionRepository) OpenCashSession(ctx context.Context, s domain.CashSession) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO cash_sessions (id, opened_at, opened_by, opening_balance)
		VALUES ($1,$2,$3,$4)
	`, s.ID, s.OpenedAt, s.OpenedBy, s.OpeningBalanceCents)
	if db.IsUniqueViolation(err) {
		return domain.Conflictf("a cash session is already open")
	}
	return err
}

func (r CashSessionRepository) GetOpenCashSession(ctx context.Context) (*domain.CashSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, opened_at, closed_at, opened_by, closed_by, opening_balance, counted_cash, expected_closing
		FROM cash_sessions
		WHERE closed_at IS NULL
	`)
	return r.scanSession(ctx, row)
}

func (r CashSessionRepository) GetCashSession(ctx context.Context, id string) (*domain.CashSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, opened_at, closed_at, opened_by, closed_by, opening_balance, counted_cash, expected_closing
		FROM cash_sessions
		WHERE id=$1
	`, id)
	return r.scanSession(ctx, row)
}

func (r CashSessionRepository) AppendWithdrawal(ctx context.Context, sessionID string, w domain.Withdrawal) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO cash_withdrawals (id, session_id, amount, description, withdrawn_by, withdrawn_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, w.ID, sessionID, w.AmountCents, w.Description, w.WithdrawnBy, w.WithdrawnAt)
	return err
}

// CloseCashSession writes the closing fields; the closed_at IS NULL guard
// makes a double close a no-op reported as domain.ErrConflict.
func (r CashSessionRepository) CloseCashSession(ctx context.Context, s domain.CashSession) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE cash_sessions
		SET closed_at=$2, closed_by=$3, counted_cash=$4, expected_closing=$5
		WHERE id=$1 AND closed_at IS NULL
	`, s.ID, s.ClosedAt, s.ClosedBy, s.CountedCashCents, s.ExpectedClosingCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflictf("cash session %s is already closed", s.ID)
	}
	return nil
}

func (r CashSessionRepository) scanSession(ctx context.Context, row pgx.Row) (*domain.CashSession, error) {
	var s domain.CashSession
	err := row.Scan(&s.ID, &s.OpenedAt, &s.ClosedAt, &s.OpenedBy, &s.ClosedBy,
		&s.OpeningBalanceCents, &s.CountedCashCents, &s.ExpectedClosingCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, amount, description, withdrawn_by, withdrawn_at
		FROM cash_withdrawals
		WHERE session_id=$1
		ORDER BY withdrawn_at ASC, id ASC
	`, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(&w.ID, &w.AmountCents, &w.Description, &w.WithdrawnBy, &w.WithdrawnAt); err != nil {
			return nil, err
		}
		s.Withdrawals = append(s.Withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
