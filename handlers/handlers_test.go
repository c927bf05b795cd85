package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZNilakshi/clothify/internal/auth"
	"github.com/ZNilakshi/clothify/internal/cart"
	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/orders"
	"github.com/ZNilakshi/clothify/internal/repository"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type testEnv struct {
	router *gin.Engine
	mem    *repository.Memory
	keys   *auth.Keys
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := repository.NewMemory()
	mem.AddCustomer(models.Customer{CustomerID: 1, Name: "Amal", Email: "amal@example.com"})
	mem.AddCity(models.City{CityID: 10, Name: "Colombo"})
	mem.AddProduct(models.Product{ProductID: 100, Name: "Linen Shirt", SellingPrice: money(t, "25.00"), IsActive: true, Stock: 5}, 2)

	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)

	orderService := orders.NewService(mem.Customers(), mem.Cities(), mem.Products(), mem, mem, nil, money(t, "10.00"))
	cartService := cart.NewService(mem.Products(), mem)

	router := API("/v1", keys, orderService, cartService, mem, mem, nil)
	return &testEnv{router: router, mem: mem, keys: keys}
}

func (e *testEnv) token(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	tok, err := e.keys.SignToken(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Roles:            roles,
	})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/v1/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "1", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 100, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snapshot models.CartSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].Quantity)

	w = env.do(t, http.MethodPost, "/v1/orders/checkout", token, gin.H{
		"city_id":         10,
		"payment_method":  "CARD",
		"delivery_method": "pickup",
		"contact_email":   "amal@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(money(t, "50.00")))
	assert.Equal(t, 3, env.mem.StockOf(100))

	w = env.do(t, http.MethodGet, "/v1/orders/"+order.OrderID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/orders", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutEmptyCartReturns422(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "1", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/v1/orders/checkout", token, gin.H{
		"payment_method":  "CARD",
		"delivery_method": "pickup",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestCheckoutInsufficientStockReturns409(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "1", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 100, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.mem.Reserve(context.Background(), 100, 3))

	w = env.do(t, http.MethodPost, "/v1/orders/checkout", token, gin.H{
		"payment_method":  "CARD",
		"delivery_method": "pickup",
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["requested"])
	assert.Equal(t, float64(2), body["available"])
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "1", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 100, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/v1/orders/checkout", token, gin.H{
		"payment_method":  "CARD",
		"delivery_method": "pickup",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = env.do(t, http.MethodPost, "/v1/orders/"+order.OrderID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, env.mem.StockOf(100))

	// Cancelling again hits the terminal-state guard.
	w = env.do(t, http.MethodPost, "/v1/orders/"+order.OrderID+"/cancel", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.token(t, "1", auth.RoleUser)
	adminToken := env.token(t, "1", auth.RoleUser, auth.RoleAdmin)

	for _, path := range []string{
		"/v1/admin/orders",
		"/v1/admin/customers/1/orders",
		"/v1/inventory/low-stock",
		"/v1/reports/sales",
		"/v1/reports/top-products",
	} {
		w := env.do(t, http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = env.do(t, http.MethodGet, path, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestStatusUpdateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.token(t, "1", auth.RoleUser)
	adminToken := env.token(t, "1", auth.RoleUser, auth.RoleAdmin)

	w := env.do(t, http.MethodPost, "/v1/cart/items", userToken, gin.H{"product_id": 100, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/v1/orders/checkout", userToken, gin.H{
		"payment_method":  "CARD",
		"delivery_method": "pickup",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = env.do(t, http.MethodPatch, "/v1/orders/"+order.OrderID+"/status", userToken, gin.H{"status": "PROCESSING"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/v1/orders/"+order.OrderID+"/status", adminToken, gin.H{"status": "PROCESSING"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Unknown status strings are rejected as business-rule violations.
	w = env.do(t, http.MethodPatch, "/v1/orders/"+order.OrderID+"/status", adminToken, gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/v1/orders/does-not-exist", userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
