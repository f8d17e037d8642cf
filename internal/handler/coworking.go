package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/server/authctx"
	"coworkpos-backend/internal/service"
)

type CoworkingHandler struct {
	Service *service.CoworkingService
}

func (h CoworkingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/coworking/sessions", h.list)
	r.Get("/coworking/sessions/{id}", h.get)
	r.Post("/coworking/sessions", h.start)
	r.Post("/coworking/sessions/{id}/extras", h.addExtra)
	r.Post("/coworking/sessions/{id}/checkout", h.checkout)
}

// RegisterAdminRoutes mounts the repair pass behind the manager role.
func (h CoworkingHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/coworking/repair", h.repair)
}

func (h CoworkingHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.SessionStatus(r.URL.Query().Get("status"))
	sessions, err := h.Service.List(r.Context(), status, 200)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionPayload(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CoworkingHandler) get(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(*session))
}

func (h CoworkingHandler) start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string `json:"customerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, err := h.Service.Start(r.Context(), req.CustomerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(*session))
}

func (h CoworkingHandler) addExtra(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID     *int64 `json:"itemId"`
		Name       string `json:"name"`
		PriceCents int64  `json:"priceCents"`
		Qty        int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, err := h.Service.AddExtra(r.Context(), chi.URLParam(r, "id"), domain.Extra{
		ItemID:     req.ItemID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Qty:        req.Qty,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(*session))
}

func (h CoworkingHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var soldBy string
	if u := authctx.FromContext(r.Context()); u != nil {
		soldBy = u.Email
	}
	session, err := h.Service.Checkout(r.Context(), chi.URLParam(r, "id"),
		domain.PaymentMethod(req.PaymentMethod), soldBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(*session))
}

func (h CoworkingHandler) repair(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Repair(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func sessionPayload(s domain.CoworkingSession) map[string]any {
	extras := make([]map[string]any, 0, len(s.ConsumedExtras))
	for _, e := range s.ConsumedExtras {
		extras = append(extras, map[string]any{
			"itemId":     e.ItemID,
			"name":       e.Name,
			"priceCents": e.PriceCents,
			"qty":        e.Qty,
		})
	}
	return map[string]any{
		"id":              s.ID,
		"customerName":    s.CustomerName,
		"startTime":       s.StartTime,
		"endTime":         s.EndTime,
		"status":          string(s.Status),
		"totalCents":      s.TotalCents,
		"durationMinutes": s.DurationMinutes,
		"consumedExtras":  extras,
	}
}
