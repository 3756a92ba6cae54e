package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productSKUs(t *testing.T, env testEnvelope) []string {
	t.Helper()
	var products []domain.Product
	decodeData(t, env, &products)
	skus := make([]string, len(products))
	for i, p := range products {
		skus[i] = p.SKU
	}
	return skus
}

func TestListProducts_Defaults(t *testing.T) {
	srv := setupServer(t)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, []string{"W-001", "W-002", "W-003"}, productSKUs(t, env))
	assert.JSONEq(t, `{"pagination":{"page":1,"limit":20,"total":3,"totalPages":1}}`, string(env.Meta))
}

func TestListProducts_FiltersAndPaging(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{"brand", url.Values{"brand": {"Omega", "Tissot"}}, []string{"W-001", "W-003"}},
		{"category", url.Values{"category": {"Dress"}}, []string{"W-002", "W-003"}},
		{"in stock", url.Values{"inStock": {"true"}}, []string{"W-001", "W-003"}},
		{"price range", url.Values{"priceMin": {"30"}, "priceMax": {"100"}}, []string{"W-001", "W-002"}},
		{"min rating", url.Values{"minRating": {"4.5"}}, []string{"W-001", "W-002"}},
		{"search", url.Values{"search": {"seiko"}}, []string{"W-002"}},
		{"sort price asc", url.Values{"sort": {"price_asc"}}, []string{"W-003", "W-002", "W-001"}},
		{"sort newest", url.Values{"sort": {"newest"}}, []string{"W-003", "W-002", "W-001"}},
		{"second page", url.Values{"limit": {"2"}, "page": {"2"}}, []string{"W-003"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodGet, "/api/v1/products?"+tt.query.Encode(), nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, productSKUs(t, env))
		})
	}
}

func TestListProducts_InvalidQuery(t *testing.T) {
	srv := setupServer(t)

	for _, query := range []string{"sort=cheapest", "priceMin=abc", "minRating=high", "page=first"} {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/products?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		require.NotNil(t, env.Error)
		assert.Equal(t, codeValidation, env.Error.Code)
	}
}

func TestGetProduct(t *testing.T) {
	srv := setupServer(t)

	for _, path := range []string{"/api/v1/products/prod_001", "/api/v1/products/slug/omega-seamaster", "/api/v1/products/sku/W-001"} {
		rec, env := srv.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var p domain.Product
		decodeData(t, env, &p)
		assert.Equal(t, "W-001", p.SKU)
	}

	rec, env := srv.do(t, http.MethodGet, "/api/v1/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Error.Code)
	assert.Equal(t, "Product not found", env.Error.Message)
}

func TestSupportingRoutes(t *testing.T) {
	srv := setupServer(t)

	_, env := srv.do(t, http.MethodGet, "/api/v1/brands", nil)
	var brands []domain.Brand
	decodeData(t, env, &brands)
	assert.Len(t, brands, 1)

	_, env = srv.do(t, http.MethodGet, "/api/v1/categories", nil)
	var categories []domain.Category
	decodeData(t, env, &categories)
	assert.Equal(t, []domain.Category{{Name: "Dive", Slug: "dive", Count: 1}, {Name: "Dress", Slug: "dress", Count: 2}}, categories)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/collections", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var collections []domain.Collection
	decodeData(t, env, &collections)
	assert.NotEmpty(t, collections)
}
