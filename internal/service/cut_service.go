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

// CutService produces cash cut reports for a period. It is the only writer of
// scheduler-triggered reports; the manual HTTP trigger goes through the same
// code path so exactly one component owns report creation.
type CutService struct {
	Store     ports.Store
	Tariff    domain.Tariff
	Logger    *slog.Logger
	Retention int
}

func NewCutService(store ports.Store, tariff domain.Tariff, logger *slog.Logger, retention int) *CutService {
	return &CutService{Store: store, Tariff: tariff, Logger: logger, Retention: retention}
}

// RunCut gathers the day containing now (midnight to now in now's location),
// totals sales and expenses, persists the report in a single write, and then
// applies the retention policy. Gathering always completes before computation
// and the report is durably stored before the caller notifies anyone.
func (s *CutService) RunCut(ctx context.Context, now time.Time, trigger domain.CutTrigger) (*domain.CashCutReport, error) {
	periodStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.RunCutForPeriod(ctx, periodStart, now, trigger)
}

func (s *CutService) RunCutForPeriod(ctx context.Context, start, end time.Time, trigger domain.CutTrigger) (*domain.CashCutReport, error) {
	sales, err := s.Store.SalesForPeriod(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: gather sales: %v", domain.ErrPersistence, err)
	}
	expenses, err := s.Store.ExpensesForPeriod(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: gather expenses: %v", domain.ErrPersistence, err)
	}

	totalSales, err := s.totalSales(ctx, sales)
	if err != nil {
		return nil, err
	}
	var totalExpenses int64
	for _, e := range expenses {
		totalExpenses += e.AmountCents
	}

	report := domain.CashCutReport{
		ID:                 uuid.NewString(),
		PeriodStart:        start,
		PeriodEnd:          end,
		TotalSalesCents:    totalSales,
		TotalExpensesCents: totalExpenses,
		NetTotalCents:      totalSales - totalExpenses,
		GeneratedAt:        end,
		TriggeredBy:        trigger,
	}
	if err := s.Store.SaveCashCutReport(ctx, report); err != nil {
		return nil, fmt.Errorf("%w: save report: %v", domain.ErrPersistence, err)
	}

	if archived, err := s.Store.ArchiveReportsBeyond(ctx, s.Retention); err != nil {
		s.Logger.Warn("report retention pass failed", "err", err)
	} else if archived > 0 {
		s.Logger.Info("archived old cash cut reports", "count", archived)
	}

	s.Logger.Info("cash cut completed",
		"trigger", string(trigger),
		"sales", len(sales),
		"expenses", len(expenses),
		"net_total", report.NetTotalCents,
	)
	return &report, nil
}

// totalSales sums sale amounts, revalidating session-settling sales against a
// fresh total recomputation so a drifted stored total never reaches a report.
func (s *CutService) totalSales(ctx context.Context, sales []domain.Sale) (int64, error) {
	var total int64
	for _, sale := range sales {
		amount := sale.AmountCents
		if sale.SessionID != nil {
			session, err := s.Store.GetCoworkingSession(ctx, *sale.SessionID)
			if err != nil {
				return 0, fmt.Errorf("%w: load session %s: %v", domain.ErrPersistence, *sale.SessionID, err)
			}
			recomputed, _ := billing.ComputeSessionTotal(*session, s.Tariff)
			if recomputed != amount {
				s.Logger.Warn("session sale amount drifted from recomputation",
					"sale_id", sale.ID,
					"session_id", *sale.SessionID,
					"stored", amount,
					"recomputed", recomputed,
				)
				amount = recomputed
			}
		}
		total += amount
	}
	return total, nil
}

// ListReports exposes stored reports for the API layer.
func (s *CutService) ListReports(ctx context.Context, includeArchived bool, limit int) ([]domain.CashCutReport, error) {
	return s.Store.ListCashCutReports(ctx, includeArchived, limit)
}
