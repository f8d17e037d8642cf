package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/ports"
	"coworkpos-backend/internal/server/authctx"
)

type SaleHandler struct {
	Store    ports.SaleStore
	Location *time.Location
}

func (h SaleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.list)
	r.Post("/sales", h.create)
}

func (h SaleHandler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := periodFromQuery(r, h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter")
		return
	}
	sales, err := h.Store.SalesForPeriod(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(sales))
	for _, s := range sales {
		out = append(out, salePayload(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h SaleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"paymentMethod"`
		Items         []struct {
			ProductID  *int64 `json:"productId"`
			Name       string `json:"name"`
			PriceCents int64  `json:"priceCents"`
			Qty        int    `json:"qty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	switch method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentTransfer:
	case "":
		method = domain.PaymentCash
	default:
		writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	var soldBy string
	if u := authctx.FromContext(r.Context()); u != nil {
		soldBy = u.Email
	}

	now := time.Now()
	sale := domain.Sale{
		ID:            uuid.NewString(),
		Code:          fmt.Sprintf("ORD-%d", now.UnixMilli()),
		PaymentMethod: method,
		SoldBy:        soldBy,
		CreatedAt:     now,
	}
	for _, it := range req.Items {
		if it.Qty <= 0 || it.PriceCents < 0 {
			writeError(w, http.StatusBadRequest, "invalid item price or quantity")
			return
		}
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PriceCents: it.PriceCents,
			Qty:        it.Qty,
		})
		sale.AmountCents += it.PriceCents * int64(it.Qty)
	}

	created, err := h.Store.CreateSale(r.Context(), sale)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, salePayload(*created))
}

func salePayload(s domain.Sale) map[string]any {
	items := make([]map[string]any, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, map[string]any{
			"productId":  it.ProductID,
			"name":       it.Name,
			"priceCents": it.PriceCents,
			"qty":        it.Qty,
		})
	}
	return map[string]any{
		"id":            s.ID,
		"code":          s.Code,
		"amountCents":   s.AmountCents,
		"paymentMethod": string(s.PaymentMethod),
		"sessionId":     s.SessionID,
		"soldBy":        s.SoldBy,
		"items":         items,
		"createdAt":     s.CreatedAt,
	}
}
