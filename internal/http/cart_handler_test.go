package http

import (
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartBody struct {
	CartID string `json:"cartId"`
	Items  []struct {
		SKU      string          `json:"sku"`
		Price    decimal.Decimal `json:"price"`
		Quantity int             `json:"quantity"`
	} `json:"items"`
	Totals struct {
		Subtotal  decimal.Decimal `json:"subtotal"`
		ItemCount int             `json:"itemCount"`
	} `json:"totals"`
}

func TestCreateCart_CreatedThenUpdated(t *testing.T) {
	srv := setupServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/cart", map[string]any{
		"items": []map[string]any{item("W-001", 1), item("W-003", 2), item("W-001", 1)},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created cartBody
	decodeData(t, env, &created)
	require.NotEmpty(t, created.CartID)
	require.Len(t, created.Items, 2)
	assert.Equal(t, 2, created.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("251").Equal(created.Totals.Subtotal))
	assert.Equal(t, 4, created.Totals.ItemCount)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart", map[string]any{
		"cartId": created.CartID,
		"items":  []map[string]any{item("W-003", 1)},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated cartBody
	decodeData(t, env, &updated)
	assert.Equal(t, created.CartID, updated.CartID)
	assert.Equal(t, 1, updated.Totals.ItemCount)
}

func TestCreateCart_Errors(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"zero quantity", map[string]any{"items": []map[string]any{item("W-001", 0)}}, http.StatusBadRequest, codeValidation},
		{"missing items", map[string]any{}, http.StatusBadRequest, codeValidation},
		{"malformed json", `{"items":`, http.StatusBadRequest, codeValidation},
		{"unknown sku", map[string]any{"items": []map[string]any{item("W-999", 1)}}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"insufficient stock", map[string]any{"items": []map[string]any{item("W-001", 6)}}, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"out of stock", map[string]any{"items": []map[string]any{item("W-002", 1)}}, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"merged quantity overflows", map[string]any{"items": []map[string]any{item("W-001", math.MaxInt), item("W-001", math.MaxInt)}}, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodPost, "/api/v1/cart", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestCreateCart_ValidationDetails(t *testing.T) {
	srv := setupServer(t)

	_, env := srv.do(t, http.MethodPost, "/api/v1/cart", map[string]any{
		"items": []map[string]any{{"sku": "", "quantity": 1}},
	})
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid request data", env.Error.Message)
	assert.Equal(t, []any{map[string]any{"field": "items[0].sku", "message": "is required"}}, env.Error.Details)
}

func TestCreateCart_InsufficientStockMessage(t *testing.T) {
	srv := setupServer(t)

	_, env := srv.do(t, http.MethodPost, "/api/v1/cart", map[string]any{"items": []map[string]any{item("W-003", 4)}})
	require.NotNil(t, env.Error)
	assert.Equal(t, "Insufficient stock for Tissot PRX. Available: 3", env.Error.Message)
}

func TestCreateCart_BodyTooLarge(t *testing.T) {
	srv := setupServer(t)

	body := `{"items":[{"sku":"` + strings.Repeat("x", 8192) + `","quantity":1}]}`
	rec, env := srv.do(t, http.MethodPost, "/api/v1/cart", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, codePayloadTooLarge, env.Error.Code)
}

func TestGetCart(t *testing.T) {
	srv := setupServer(t)
	cartID := srv.createCart(t, item("W-001", 2))

	rec, env := srv.do(t, http.MethodGet, "/api/v1/cart/"+cartID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartBody
	decodeData(t, env, &cart)
	assert.True(t, decimal.NewFromInt(200).Equal(cart.Totals.Subtotal))

	rec, env = srv.do(t, http.MethodGet, "/api/v1/cart/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CART_NOT_FOUND", env.Error.Code)
	assert.Equal(t, "Cart not found or expired", env.Error.Message)
}

func TestUpdateCartItem(t *testing.T) {
	srv := setupServer(t)
	cartID := srv.createCart(t, item("W-001", 1))

	rec, env := srv.do(t, http.MethodPut, "/api/v1/cart/"+cartID+"/items/W-003", map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartBody
	decodeData(t, env, &cart)
	assert.Equal(t, 3, cart.Totals.ItemCount)

	rec, env = srv.do(t, http.MethodPut, "/api/v1/cart/"+cartID+"/items/W-001", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "W-003", cart.Items[0].SKU)

	rec, env = srv.do(t, http.MethodPut, "/api/v1/cart/"+cartID+"/items/W-001", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, env.Error.Code)

	rec, _ = srv.do(t, http.MethodPut, "/api/v1/cart/"+cartID+"/items/W-001", map[string]any{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = srv.do(t, http.MethodPut, "/api/v1/cart/missing/items/W-001", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CART_NOT_FOUND", env.Error.Code)
}

func TestDeleteCart(t *testing.T) {
	srv := setupServer(t)
	cartID := srv.createCart(t, item("W-001", 1))

	rec, env := srv.do(t, http.MethodDelete, "/api/v1/cart/"+cartID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Cart deleted successfully"}`, string(env.Data))

	rec, env = srv.do(t, http.MethodDelete, "/api/v1/cart/"+cartID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cart not found", env.Error.Message)
}

func TestCreateMandateAndVerifyPayment(t *testing.T) {
	srv := setupServer(t)
	cartID := srv.createCart(t, item("W-001", 1))

	rec, env := srv.do(t, http.MethodPost, "/api/v1/cart/"+cartID+"/create-mandate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_WALLET", env.Error.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/"+cartID+"/create-mandate",
		map[string]any{"walletAddress": "0xabc", "network": "sepolia"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mandate struct {
		CartHash  string `json:"cartHash"`
		TypedData struct {
			Domain struct {
				ChainID int64 `json:"chainId"`
			} `json:"domain"`
			Message struct {
				Amount string `json:"amount"`
			} `json:"message"`
		} `json:"typedData"`
	}
	decodeData(t, env, &mandate)
	assert.True(t, strings.HasPrefix(mandate.CartHash, "0x"))
	assert.Len(t, mandate.CartHash, 66)
	assert.Equal(t, int64(11155111), mandate.TypedData.Domain.ChainID)
	assert.Equal(t, "100000000000000000000", mandate.TypedData.Message.Amount)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/"+cartID+"/verify-payment", map[string]any{"signature": "0xsig"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_PARAMS", env.Error.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/"+cartID+"/verify-payment",
		map[string]any{"signature": "0xsig", "mandateHash": mandate.CartHash})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
		Message string `json:"message"`
	}
	decodeData(t, env, &result)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.OrderID, "order_"))
	assert.Equal(t, "Payment verified and order created successfully", result.Message)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/cart/"+cartID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
