package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/ports"
	"coworkpos-backend/internal/server/authctx"
)

type ExpenseHandler struct {
	Store    ports.ExpenseStore
	Location *time.Location
}

func (h ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Post("/expenses", h.create)
}

func (h ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := periodFromQuery(r, h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter")
		return
	}
	expenses, err := h.Store.ExpensesForPeriod(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, map[string]any{
			"id":          e.ID,
			"title":       e.Title,
			"amountCents": e.AmountCents,
			"category":    e.Category,
			"spentBy":     e.SpentBy,
			"createdAt":   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		AmountCents int64  `json:"amountCents"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	var spentBy string
	if u := authctx.FromContext(r.Context()); u != nil {
		spentBy = u.Email
	}

	exp, err := h.Store.CreateExpense(r.Context(), domain.Expense{
		ID:          uuid.NewString(),
		Title:       req.Title,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		SpentBy:     spentBy,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          exp.ID,
		"title":       exp.Title,
		"amountCents": exp.AmountCents,
		"category":    exp.Category,
		"spentBy":     exp.SpentBy,
		"createdAt":   exp.CreatedAt,
	})
}
