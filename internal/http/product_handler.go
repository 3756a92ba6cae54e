package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/merchant-api/internal/catalog"
	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductCatalog interface {
	List(filters domain.ProductFilters, pagination domain.Pagination) ([]domain.Product, domain.PaginationMeta)
	ProductByID(id string) (domain.Product, bool)
	ProductBySKU(sku string) (domain.Product, bool)
	ProductBySlug(slug string) (domain.Product, bool)
	Brands() []domain.Brand
	Categories() []domain.Category
	Collections() []domain.Collection
}

type ProductHandler struct {
	catalog ProductCatalog
}

func NewProductHandler(catalog ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, pagination, details := parseProductQuery(r.URL.Query())
	if len(details) > 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid request data", details)
		return
	}

	products, meta := h.catalog.List(filters, pagination)
	respondJSON(w, http.StatusOK, Envelope{Success: true, Data: products, Meta: listMeta{Pagination: meta}})
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.ProductByID(chi.URLParam(r, "id"))
	h.respondProduct(w, product, ok)
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.ProductBySlug(chi.URLParam(r, "slug"))
	h.respondProduct(w, product, ok)
}

func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.ProductBySKU(chi.URLParam(r, "sku"))
	h.respondProduct(w, product, ok)
}

func (h *ProductHandler) respondProduct(w http.ResponseWriter, product domain.Product, ok bool) {
	if !ok {
		respondError(w, http.StatusNotFound, domain.ErrProductNotFound.Code, domain.ErrProductNotFound.Message, nil)
		return
	}
	respondOK(w, http.StatusOK, product)
}

func (h *ProductHandler) Brands(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK, h.catalog.Brands())
}

func (h *ProductHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK, h.catalog.Categories())
}

func (h *ProductHandler) Collections(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK, h.catalog.Collections())
}

// parseProductQuery reads list filters. brand, category and tags may repeat.
func parseProductQuery(q url.Values) (domain.ProductFilters, domain.Pagination, []FieldError) {
	var details []FieldError
	filters := domain.ProductFilters{
		Search:   q.Get("search"),
		Brands:   q["brand"],
		Category: q["category"],
		Tags:     q["tags"],
		InStock:  q.Get("inStock") == "true",
		Sort:     domain.SortKey(q.Get("sort")),
	}

	switch filters.Sort {
	case "", domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating, domain.SortNewest:
	default:
		details = append(details, FieldError{Field: "sort", Message: "must be one of: price_asc, price_desc, rating, newest"})
	}

	parseDecimal := func(key string) *decimal.Decimal {
		raw := q.Get(key)
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			details = append(details, FieldError{Field: key, Message: "must be a number"})
			return nil
		}
		return &d
	}
	filters.PriceMin = parseDecimal("priceMin")
	filters.PriceMax = parseDecimal("priceMax")
	if raw := q.Get("minRating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			details = append(details, FieldError{Field: "minRating", Message: "must be a number"})
		} else {
			filters.MinRating = &rating
		}
	}

	parseInt := func(key string, def int) int {
		raw := q.Get(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, FieldError{Field: key, Message: "must be an integer"})
			return def
		}
		return n
	}
	pagination := domain.Pagination{
		Page:  parseInt("page", 1),
		Limit: parseInt("limit", catalog.DefaultPageLimit),
	}
	return filters, pagination, details
}
