package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/server/authctx"
	"coworkpos-backend/internal/service"
)

type CashSessionHandler struct {
	Service *service.LedgerService
}

func (h CashSessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cash-sessions/current", h.current)
	r.Post("/cash-sessions", h.open)
	r.Post("/cash-sessions/{id}/withdrawals", h.withdraw)
	r.Post("/cash-sessions/{id}/close", h.close)
}

func (h CashSessionHandler) current(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Current(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cashSessionPayload(*session))
}

func (h CashSessionHandler) open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpeningBalanceCents int64 `json:"openingBalanceCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, err := h.Service.Open(r.Context(), req.OpeningBalanceCents, currentUserEmail(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cashSessionPayload(*session))
}

func (h CashSessionHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64  `json:"amountCents"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	wd, err := h.Service.RecordWithdrawal(r.Context(), chi.URLParam(r, "id"),
		req.AmountCents, req.Description, currentUserEmail(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          wd.ID,
		"amountCents": wd.AmountCents,
		"description": wd.Description,
		"withdrawnBy": wd.WithdrawnBy,
		"withdrawnAt": wd.WithdrawnAt,
	})
}

func (h CashSessionHandler) close(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CountedCashCents int64 `json:"countedCashCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	report, err := h.Service.Close(r.Context(), chi.URLParam(r, "id"),
		req.CountedCashCents, currentUserEmail(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportPayload(*report))
}

func currentUserEmail(r *http.Request) string {
	if u := authctx.FromContext(r.Context()); u != nil {
		return u.Email
	}
	return ""
}

func cashSessionPayload(s domain.CashSession) map[string]any {
	withdrawals := make([]map[string]any, 0, len(s.Withdrawals))
	for _, wd := range s.Withdrawals {
		withdrawals = append(withdrawals, map[string]any{
			"id":          wd.ID,
			"amountCents": wd.AmountCents,
			"description": wd.Description,
			"withdrawnBy": wd.WithdrawnBy,
			"withdrawnAt": wd.WithdrawnAt,
		})
	}
	return map[string]any{
		"id":                   s.ID,
		"openedAt":             s.OpenedAt,
		"closedAt":             s.ClosedAt,
		"openedBy":             s.OpenedBy,
		"closedBy":             s.ClosedBy,
		"openingBalanceCents":  s.OpeningBalanceCents,
		"countedCashCents":     s.CountedCashCents,
		"expectedClosingCents": s.ExpectedClosingCents,
		"withdrawals":          withdrawals,
	}
}
