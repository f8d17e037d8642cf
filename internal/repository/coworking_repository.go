package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type CoworkingRepository struct {
	DB *db.Postgres
}

func (r CoworkingRepository) CreateCoworkingSession(ctx context.Context, s domain.CoworkingSession) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO coworking_sessions
		(id, customer_name, start_time, end_time, status, total, duration_minutes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
	`, s.ID, s.CustomerName, s.StartTime, s.EndTime, string(s.Status), s.TotalCents, s.DurationMinutes)
	return err
}

func (r CoworkingRepository) GetCoworkingSession(ctx context.Context, id string) (*domain.CoworkingSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, customer_name, start_time, end_time, status, total, duration_minutes, created_at, updated_at
		FROM coworking_sessions
		WHERE id=$1
	`, id)
	s, err := scanCoworkingSession(row)
	if err != nil {
		return nil, err
	}
	extras, err := r.sessionExtras(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.ConsumedExtras = extras
	return s, nil
}

// UpdateCoworkingSession rewrites the session row and its extras as one
// transaction, keeping the stored state a faithful snapshot.
func (r CoworkingRepository) UpdateCoworkingSession(ctx context.Context, s domain.CoworkingSession) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE coworking_sessions
		SET customer_name=$2, start_time=$3, end_time=$4, status=$5, total=$6, duration_minutes=$7, updated_at=now()
		WHERE id=$1
	`, s.ID, s.CustomerName, s.StartTime, s.EndTime, string(s.Status), s.TotalCents, s.DurationMinutes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM coworking_extras WHERE session_id=$1`, s.ID); err != nil {
		return err
	}
	for _, e := range s.ConsumedExtras {
		_, err := tx.Exec(ctx, `
			INSERT INTO coworking_extras (session_id, item_id, name, price, qty)
			VALUES ($1,$2,$3,$4,$5)
		`, s.ID, e.ItemID, e.Name, e.PriceCents, e.Qty)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r CoworkingRepository) ListCoworkingSessions(ctx context.Context, status domain.SessionStatus, limit int) ([]domain.CoworkingSession, error) {
	query := `
		SELECT id, customer_name, start_time, end_time, status, total, duration_minutes, created_at, updated_at
		FROM coworking_sessions
	`
	var args []any
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, string(status))
	}
	query += ` ORDER BY start_time DESC`
	if limit > 0 {
		args = append(args, limit)
		if status != "" {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
	}

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.CoworkingSession
	for rows.Next() {
		s, err := scanCoworkingSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		extras, err := r.sessionExtras(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].ConsumedExtras = extras
	}
	return sessions, nil
}

func (r CoworkingRepository) sessionExtras(ctx context.Context, sessionID string) ([]domain.Extra, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT item_id, name, price, qty
		FROM coworking_extras
		WHERE session_id=$1
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []domain.Extra
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ItemID, &e.Name, &e.PriceCents, &e.Qty); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func scanCoworkingSession(row pgx.Row) (*domain.CoworkingSession, error) {
	var s domain.CoworkingSession
	var status string
	err := row.Scan(&s.ID, &s.CustomerName, &s.StartTime, &s.EndTime, &status, &s.TotalCents,
		&s.DurationMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Status = domain.SessionStatus(status)
	return &s, nil
}
