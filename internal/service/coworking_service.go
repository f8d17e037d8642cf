package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coworkpos-backend/internal/billing"
	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/ports"
)

// CoworkingService runs the billable occupancy lifecycle: start, add extras,
// checkout, and the repair pass that reconciles drifted stored totals.
type CoworkingService struct {
	Store  ports.Store
	Tariff domain.Tariff
	Logger *slog.Logger

	Now func() time.Time
}

func NewCoworkingService(store ports.Store, tariff domain.Tariff, logger *slog.Logger) *CoworkingService {
	return &CoworkingService{Store: store, Tariff: tariff, Logger: logger, Now: time.Now}
}

func (s *CoworkingService) Start(ctx context.Context, customerName string) (*domain.CoworkingSession, error) {
	session := domain.CoworkingSession{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		StartTime:    s.Now(),
		Status:       domain.SessionActive,
	}
	if err := s.Store.CreateCoworkingSession(ctx, session); err != nil {
		return nil, err
	}
	s.Logger.Info("coworking session started", "session_id", session.ID, "customer", customerName)
	return &session, nil
}

func (s *CoworkingService) Get(ctx context.Context, id string) (*domain.CoworkingSession, error) {
	return s.Store.GetCoworkingSession(ctx, id)
}

func (s *CoworkingService) List(ctx context.Context, status domain.SessionStatus, limit int) ([]domain.CoworkingSession, error) {
	return s.Store.ListCoworkingSessions(ctx, status, limit)
}

func (s *CoworkingService) AddExtra(ctx context.Context, sessionID string, extra domain.Extra) (*domain.CoworkingSession, error) {
	if extra.Qty <= 0 {
		return nil, domain.Validationf("extra quantity must be positive")
	}
	if extra.PriceCents < 0 {
		return nil, domain.Validationf("extra price must not be negative")
	}
	session, err := s.Store.GetCoworkingSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.Conflictf("session %s is not active", sessionID)
	}
	session.ConsumedExtras = append(session.ConsumedExtras, extra)
	if err := s.Store.UpdateCoworkingSession(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// Checkout closes the session: sets the end time, computes the final total
// and adjusted duration, and registers the matching sale so the revenue shows
// up in cash cuts. The session is immutable afterwards except via Repair.
func (s *CoworkingService) Checkout(ctx context.Context, sessionID string, paymentMethod domain.PaymentMethod, soldBy string) (*domain.CoworkingSession, error) {
	session, err := s.Store.GetCoworkingSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.Conflictf("session %s is already finished", sessionID)
	}
	if paymentMethod == "" {
		paymentMethod = domain.PaymentCash
	}

	end := s.Now()
	session.EndTime = &end
	session.Status = domain.SessionFinished
	session.TotalCents, session.DurationMinutes = billing.ComputeSessionTotal(*session, s.Tariff)
	if err := s.Store.UpdateCoworkingSession(ctx, *session); err != nil {
		return nil, err
	}

	sale := domain.Sale{
		ID:            uuid.NewString(),
		Code:          fmt.Sprintf("SES-%d", end.UnixMilli()),
		AmountCents:   session.TotalCents,
		PaymentMethod: paymentMethod,
		SessionID:     &session.ID,
		SoldBy:        soldBy,
		CreatedAt:     end,
	}
	if _, err := s.Store.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("register session sale: %w", err)
	}

	s.Logger.Info("coworking session checked out",
		"session_id", session.ID,
		"minutes", session.DurationMinutes,
		"total", session.TotalCents,
	)
	return session, nil
}

// RepairResult counts the outcome of a reconciliation pass.
type RepairResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Repair recomputes total and duration for every finished session and
// persists any that drifted from the recomputation. Sessions without an end
// time are skipped: their duration is undefined.
func (s *CoworkingService) Repair(ctx context.Context) (RepairResult, error) {
	var res RepairResult
	sessions, err := s.Store.ListCoworkingSessions(ctx, domain.SessionFinished, 0)
	if err != nil {
		return res, err
	}
	for _, session := range sessions {
		if session.EndTime == nil {
			res.Skipped++
			continue
		}
		total, minutes := billing.ComputeSessionTotal(session, s.Tariff)
		if total == session.TotalCents && minutes == session.DurationMinutes {
			res.Skipped++
			continue
		}
		s.Logger.Warn("session totals drifted, repairing",
			"session_id", session.ID,
			"stored_total", session.TotalCents,
			"recomputed_total", total,
		)
		session.TotalCents = total
		session.DurationMinutes = minutes
		if err := s.Store.UpdateCoworkingSession(ctx, session); err != nil {
			return res, err
		}
		res.Updated++
	}
	s.Logger.Info("session repair finished", "updated", res.Updated, "skipped", res.Skipped)
	return res, nil
}
