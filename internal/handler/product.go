package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/ports"
)

type ProductHandler struct {
	Store ports.ProductStore
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

// RegisterAdminRoutes holds the mutating endpoints, mounted behind the
// manager role.
func (h ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

type productRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	PriceCents int64  `json:"priceCents"`
	TrackStock bool   `json:"trackStock"`
	Stock      int    `json:"stock"`
}

func (h ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, productPayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productPayload(*p))
}

func (h ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.PriceCents < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	p, err := h.Store.CreateProduct(r.Context(), domain.Product{
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		TrackStock: req.TrackStock,
		Stock:      req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, productPayload(*p))
}

func (h ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p, err := h.Store.UpdateProduct(r.Context(), domain.Product{
		ID:         id,
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		TrackStock: req.TrackStock,
		Stock:      req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productPayload(*p))
}

func (h ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func productPayload(p domain.Product) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"category":   p.Category,
		"priceCents": p.PriceCents,
		"trackStock": p.TrackStock,
		"stock":      p.Stock,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}
