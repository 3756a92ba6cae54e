package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type StockChecker interface {
	CheckAvailability(sku string) (domain.Availability, error)
	CheckMultiple(skus []string) ([]domain.Availability, error)
	LowStock(threshold int) []domain.Product
}

type InventoryHandler struct {
	inventory StockChecker
}

func NewInventoryHandler(inventory StockChecker) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type InventoryCheckRequestDTO struct {
	SKUs []string `json:"skus" validate:"required,dive,required"`
}

func (h *InventoryHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req InventoryCheckRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	availability, err := h.inventory.CheckMultiple(req.SKUs)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, availability)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	availability, err := h.inventory.CheckAvailability(chi.URLParam(r, "sku"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, availability)
}

func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, codeValidation, "Invalid request data",
				[]FieldError{{Field: "threshold", Message: "must be a non-negative integer"}})
			return
		}
		threshold = n
	}
	respondOK(w, http.StatusOK, h.inventory.LowStock(threshold))
}
