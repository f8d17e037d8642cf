package repository

import (
	"context"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type ReportRepository struct {
	DB *db.Postgres
}

func (r ReportRepository) SaveCashCutReport(ctx context.Context, report domain.CashCutReport) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO cash_cut_reports
		(id, period_start, period_end, total_sales, total_expenses, net_total, variance, generated_at, triggered_by, archived)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, report.ID, report.PeriodStart, report.PeriodEnd, report.TotalSalesCents, report.TotalExpensesCents,
		report.NetTotalCents, report.VarianceCents, report.GeneratedAt, string(report.TriggeredBy), report.Archived)
	return err
}

func (r ReportRepository) ListCashCutReports(ctx context.Context, includeArchived bool, limit int) ([]domain.CashCutReport, error) {
	query := `
		SELECT id, period_start, period_end, total_sales, total_expenses, net_total, variance, generated_at, triggered_by, archived
		FROM cash_cut_reports
	`
	if !includeArchived {
		query += ` WHERE archived = FALSE`
	}
	query += ` ORDER BY generated_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.CashCutReport
	for rows.Next() {
		var rep domain.CashCutReport
		var trigger string
		if err := rows.Scan(&rep.ID, &rep.PeriodStart, &rep.PeriodEnd, &rep.TotalSalesCents, &rep.TotalExpensesCents,
			&rep.NetTotalCents, &rep.VarianceCents, &rep.GeneratedAt, &trigger, &rep.Archived); err != nil {
			return nil, err
		}
		rep.TriggeredBy = domain.CutTrigger(trigger)
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ArchiveReportsBeyond flags everything but the newest keep reports.
func (r ReportRepository) ArchiveReportsBeyond(ctx context.Context, keep int) (int, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE cash_cut_reports SET archived = TRUE
		WHERE archived = FALSE AND id NOT IN (
			SELECT id FROM cash_cut_reports
			WHERE archived = FALSE
			ORDER BY generated_at DESC
			LIMIT $1
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
