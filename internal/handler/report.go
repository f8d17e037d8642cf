package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/service"
)

type ReportHandler struct {
	Cut      *service.CutService
	Location *time.Location
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports", h.list)
	r.Get("/reports/export", h.export)
	r.Post("/reports/cut", h.manualCut)
}

func (h ReportHandler) list(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	reports, err := h.Cut.ListReports(r.Context(), includeArchived, 200)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(reports))
	for _, rep := range reports {
		out = append(out, reportPayload(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

// manualCut produces a cash cut for today on demand, through the same code
// path the scheduler uses.
func (h ReportHandler) manualCut(w http.ResponseWriter, r *http.Request) {
	report, err := h.Cut.RunCut(r.Context(), time.Now().In(h.Location), domain.CutTriggerManual)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportPayload(*report))
}

func (h ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Cut.ListReports(r.Context(), true, 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	f, err := buildReportWorkbook(reports)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cash-cut-reports.xlsx"`)
	_ = f.Write(w)
}

func buildReportWorkbook(reports []domain.CashCutReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Cash Cuts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Period Start", "Period End", "Total Sales", "Total Expenses", "Net Total", "Variance", "Generated At", "Triggered By", "Archived"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, rep := range reports {
		row := r + 2
		variance := ""
		if rep.VarianceCents != nil {
			variance = fmt.Sprintf("%.2f", float64(*rep.VarianceCents)/100)
		}
		values := []any{
			rep.ID,
			rep.PeriodStart.Format(time.RFC3339),
			rep.PeriodEnd.Format(time.RFC3339),
			float64(rep.TotalSalesCents) / 100,
			float64(rep.TotalExpensesCents) / 100,
			float64(rep.NetTotalCents) / 100,
			variance,
			rep.GeneratedAt.Format(time.RFC3339),
			string(rep.TriggeredBy),
			rep.Archived,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	return f, nil
}

func reportPayload(rep domain.CashCutReport) map[string]any {
	return map[string]any{
		"id":                 rep.ID,
		"periodStart":        rep.PeriodStart,
		"periodEnd":          rep.PeriodEnd,
		"totalSalesCents":    rep.TotalSalesCents,
		"totalExpensesCents": rep.TotalExpensesCents,
		"netTotalCents":      rep.NetTotalCents,
		"varianceCents":      rep.VarianceCents,
		"generatedAt":        rep.GeneratedAt,
		"triggeredBy":        string(rep.TriggeredBy),
		"archived":           rep.Archived,
	}
}
