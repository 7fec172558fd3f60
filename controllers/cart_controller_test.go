package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soilq/soilq-api/cart"
	"github.com/soilq/soilq-api/tests/testutil"
)

type cartResponse struct {
	Items       []cart.Item `json:"items"`
	SidebarOpen bool        `json:"sidebar_open"`
	Subtotal    float64     `json:"subtotal"`
	Count       int         `json:"count"`
}

// useCartStore installs a fresh in-memory cart store for the test
func useCartStore(t *testing.T) *cart.MemoryStore {
	t.Helper()

	store := cart.NewMemoryStore()
	original := GetCartStore()
	SetCartStore(store)
	t.Cleanup(func() { SetCartStore(original) })
	return store
}

func setupCartRouter(auth0ID string) *gin.Engine {
	router := setupTestRouter()
	group := router.Group("/cart", testutil.MockAuthMiddleware(auth0ID))
	group.GET("", GetCart)
	group.POST("/items", AddCartItem)
	group.PUT("/items/:productId", UpdateCartItem)
	group.DELETE("/items/:productId", RemoveCartItem)
	group.DELETE("/items", ClearCart)
	group.PUT("/sidebar", SetCartSidebar)
	group.DELETE("/session", EndCartSession)
	return router
}

func cartOf(t *testing.T, router *gin.Engine, method, path string, body any) cartResponse {
	t.Helper()

	w := doRequest(router, method, path, body)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var resp cartResponse
	decodeData(t, w, &resp)
	return resp
}

func TestCart_EmptyOnFirstAccess(t *testing.T) {
	useCartStore(t)
	router := setupCartRouter(farmerID)

	resp := cartOf(t, router, http.MethodGet, "/cart", nil)
	assert.Empty(t, resp.Items)
	assert.False(t, resp.SidebarOpen)
	assert.Zero(t, resp.Subtotal)
	assert.Zero(t, resp.Count)
}

func TestCart_AddUpdateRemove(t *testing.T) {
	db := setupTestDB(t)
	seedProducts(t, db)
	useCartStore(t)
	router := setupCartRouter(farmerID)

	resp := cartOf(t, router, http.MethodPost, "/cart/items", map[string]any{"product_id": "AMD-LIME", "quantity": 2})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Agricultural Lime", resp.Items[0].Name)
	assert.Equal(t, 15.99, resp.Items[0].Price)

	// adding again merges into the same line, quantity defaults to one
	resp = cartOf(t, router, http.MethodPost, "/cart/items", map[string]any{"product_id": "AMD-LIME"})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)

	resp = cartOf(t, router, http.MethodPost, "/cart/items", map[string]any{"product_id": "FRT-AN-34", "quantity": 1})
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 4, resp.Count)
	assert.Equal(t, 70.47, resp.Subtotal)

	resp = cartOf(t, router, http.MethodPut, "/cart/items/AMD-LIME", map[string]any{"quantity": 1})
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 38.49, resp.Subtotal)

	resp = cartOf(t, router, http.MethodPut, "/cart/items/AMD-LIME", map[string]any{"quantity": 0})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "FRT-AN-34", resp.Items[0].ProductID)

	resp = cartOf(t, router, http.MethodDelete, "/cart/items/FRT-AN-34", nil)
	assert.Empty(t, resp.Items)
}

func TestCart_AddRejected(t *testing.T) {
	db := setupTestDB(t)
	seedProducts(t, db)
	useCartStore(t)
	router := setupCartRouter(farmerID)

	requireErrorCode(t, doRequest(router, http.MethodPost, "/cart/items", map[string]any{"product_id": "NOPE"}), http.StatusNotFound, "PRODUCT_NOT_FOUND")
	requireErrorCode(t, doRequest(router, http.MethodPost, "/cart/items", map[string]any{"product_id": "SED-TOM"}), http.StatusBadRequest, "OUT_OF_STOCK")
	requireErrorCode(t, doRequest(router, http.MethodPost, "/cart/items", map[string]any{"quantity": 2}), http.StatusBadRequest, "VALIDATION_ERROR")
	requireErrorCode(t, doRequest(router, http.MethodPost, "/cart/items", map[string]any{"product_id": "AMD-LIME", "quantity": -1}), http.StatusBadRequest, "VALIDATION_ERROR")
	requireErrorCode(t, doRequest(router, http.MethodPut, "/cart/items/AMD-LIME", map[string]any{}), http.StatusBadRequest, "VALIDATION_ERROR")

	resp := cartOf(t, router, http.MethodGet, "/cart", nil)
	assert.Empty(t, resp.Items)
}

func TestCart_SidebarSurvivesClear(t *testing.T) {
	db := setupTestDB(t)
	seedProducts(t, db)
	useCartStore(t)
	router := setupCartRouter(farmerID)

	cartOf(t, router, http.MethodPost, "/cart/items", map[string]any{"product_id": "AMD-LIME"})
	resp := cartOf(t, router, http.MethodPut, "/cart/sidebar", map[string]any{"open": true})
	assert.True(t, resp.SidebarOpen)

	resp = cartOf(t, router, http.MethodDelete, "/cart/items", nil)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.SidebarOpen)

	requireErrorCode(t, doRequest(router, http.MethodPut, "/cart/sidebar", map[string]any{}), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCart_SessionsAreSeparate(t *testing.T) {
	db := setupTestDB(t)
	seedProducts(t, db)
	store := useCartStore(t)

	farmer := setupCartRouter(farmerID)
	neighbour := setupCartRouter(otherID)

	cartOf(t, farmer, http.MethodPost, "/cart/items", map[string]any{"product_id": "AMD-LIME"})
	assert.Empty(t, cartOf(t, neighbour, http.MethodGet, "/cart", nil).Items)

	w := doRequest(farmer, http.MethodDelete, "/cart/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	st, err := store.Get(t.Context(), farmerID)
	require.NoError(t, err)
	assert.Empty(t, st.Items)
}

func TestCart_Unauthenticated(t *testing.T) {
	useCartStore(t)
	router := setupTestRouter()
	router.GET("/cart", GetCart)

	requireErrorCode(t, doRequest(router, http.MethodGet, "/cart", nil), http.StatusUnauthorized, "UNAUTHORIZED")
}
