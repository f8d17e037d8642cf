package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/ports"
)

// LedgerService owns the cash register session lifecycle: open, withdrawals,
// close with reconciliation. At most one session is open at a time; the
// storage layer enforces that atomically.
type LedgerService struct {
	Store     ports.Store
	Logger    *slog.Logger
	Retention int

	// Now is the clock used for server-assigned timestamps. Tests override it.
	Now func() time.Time
}

func NewLedgerService(store ports.Store, logger *slog.Logger, retention int) *LedgerService {
	return &LedgerService{Store: store, Logger: logger, Retention: retention, Now: time.Now}
}

func (s *LedgerService) Open(ctx context.Context, openingBalanceCents int64, openedBy string) (*domain.CashSession, error) {
	if openingBalanceCents < 0 {
		return nil, domain.Validationf("opening balance must not be negative")
	}
	session := domain.CashSession{
		ID:                  uuid.NewString(),
		OpenedAt:            s.Now(),
		OpenedBy:            openedBy,
		OpeningBalanceCents: openingBalanceCents,
	}
	if err := s.Store.OpenCashSession(ctx, session); err != nil {
		return nil, err
	}
	s.Logger.Info("cash session opened", "session_id", session.ID, "opened_by", openedBy)
	return &session, nil
}

func (s *LedgerService) Current(ctx context.Context) (*domain.CashSession, error) {
	return s.Store.GetOpenCashSession(ctx)
}

func (s *LedgerService) RecordWithdrawal(ctx context.Context, sessionID string, amountCents int64, description, who string) (*domain.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, domain.Validationf("withdrawal amount must be positive")
	}
	session, err := s.Store.GetCashSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, domain.Validationf("cash session %s is not open", sessionID)
	}
	w := domain.Withdrawal{
		ID:          uuid.NewString(),
		AmountCents: amountCents,
		Description: description,
		WithdrawnBy: who,
		WithdrawnAt: s.Now(),
	}
	if err := s.Store.AppendWithdrawal(ctx, sessionID, w); err != nil {
		return nil, err
	}
	s.Logger.Info("withdrawal recorded", "session_id", sessionID, "amount", amountCents, "by", who)
	return &w, nil
}

// Close reconciles and closes the session exactly once, producing a manual
// cash cut report that records the variance between counted and expected
// cash. Closing is irreversible.
func (s *LedgerService) Close(ctx context.Context, sessionID string, countedCashCents int64, closedBy string) (*domain.CashCutReport, error) {
	session, err := s.Store.GetCashSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, domain.Conflictf("cash session %s is already closed", sessionID)
	}

	closedAt := s.Now()
	sales, err := s.Store.SalesForPeriod(ctx, session.OpenedAt, closedAt)
	if err != nil {
		return nil, fmt.Errorf("gather sales: %w", err)
	}
	expenses, err := s.Store.ExpensesForPeriod(ctx, session.OpenedAt, closedAt)
	if err != nil {
		return nil, fmt.Errorf("gather expenses: %w", err)
	}

	var totalSales, cashSales, totalExpenses int64
	for _, sale := range sales {
		totalSales += sale.AmountCents
		if sale.PaymentMethod == domain.PaymentCash {
			cashSales += sale.AmountCents
		}
	}
	for _, e := range expenses {
		totalExpenses += e.AmountCents
	}

	expected := session.OpeningBalanceCents + cashSales - totalExpenses - session.WithdrawalsTotalCents()
	variance := countedCashCents - expected

	session.ClosedAt = &closedAt
	session.ClosedBy = closedBy
	session.CountedCashCents = &countedCashCents
	session.ExpectedClosingCents = &expected
	if err := s.Store.CloseCashSession(ctx, *session); err != nil {
		return nil, err
	}

	report := domain.CashCutReport{
		ID:                 uuid.NewString(),
		PeriodStart:        session.OpenedAt,
		PeriodEnd:          closedAt,
		TotalSalesCents:    totalSales,
		TotalExpensesCents: totalExpenses,
		NetTotalCents:      totalSales - totalExpenses,
		VarianceCents:      &variance,
		GeneratedAt:        closedAt,
		TriggeredBy:        domain.CutTriggerManual,
	}
	if err := s.Store.SaveCashCutReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save cash cut report: %w", err)
	}
	if archived, err := s.Store.ArchiveReportsBeyond(ctx, s.Retention); err != nil {
		s.Logger.Warn("report retention pass failed", "err", err)
	} else if archived > 0 {
		s.Logger.Info("archived old cash cut reports", "count", archived)
	}

	s.Logger.Info("cash session closed",
		"session_id", sessionID,
		"expected", expected,
		"counted", countedCashCents,
		"variance", variance,
	)
	return &report, nil
}
