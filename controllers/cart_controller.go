package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/cart"
	"github.com/soilq/soilq-api/catalog"
	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/services"
)

var (
	cartStore   cart.Store = cart.NewMemoryStore()
	cartStoreMu sync.RWMutex
)

// SetCartStore replaces the session cart store
func SetCartStore(st cart.Store) {
	cartStoreMu.Lock()
	cartStore = st
	cartStoreMu.Unlock()
}

// GetCartStore returns the session cart store
func GetCartStore() cart.Store {
	cartStoreMu.RLock()
	defer cartStoreMu.RUnlock()
	return cartStore
}

// AddCartItemRequest represents the request body for adding to the cart
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,gt=0"`
}

// UpdateCartItemRequest sets a line's quantity; zero removes it
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SidebarRequest toggles the cart sidebar
type SidebarRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// cartSession keys the cart by the signed-in Auth0 id
func cartSession(c *gin.Context) (string, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return "", false
	}
	return auth0ID, true
}

func respondCart(c *gin.Context, st cart.State) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":        st.Items,
			"sidebar_open": st.SidebarOpen,
			"subtotal":     cart.Subtotal(st),
			"count":        cart.Count(st),
		},
	})
}

func updateCart(c *gin.Context, session string, fn func(cart.State) cart.State) {
	st, err := cart.Update(c.Request.Context(), GetCartStore(), session, fn)
	if err != nil {
		zap.L().Error("failed to update cart", zap.String("session", session), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "CART_ERROR", "Failed to update cart")
		return
	}
	respondCart(c, st)
}

// GetCart handles GET /api/v1/cart - the session's cart, created empty on first access
func GetCart(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	st, err := GetCartStore().Get(c.Request.Context(), session)
	if err != nil {
		zap.L().Error("failed to load cart", zap.String("session", session), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "CART_ERROR", "Failed to load cart")
		return
	}
	respondCart(c, st)
}

// AddCartItem handles POST /api/v1/cart/items
func AddCartItem(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := catalog.New(config.GetDB()).Get(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, services.CodeProductNotFound, "Product not found")
			return
		}
		zap.L().Error("failed to fetch product", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch product")
		return
	}
	if !product.InStock {
		respondError(c, http.StatusBadRequest, "OUT_OF_STOCK", "Product is out of stock")
		return
	}

	updateCart(c, session, func(st cart.State) cart.State {
		return cart.AddItem(st, *product, req.Quantity)
	})
}

// UpdateCartItem handles PUT /api/v1/cart/items/:productId
func UpdateCartItem(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	productID := c.Param("productId")
	updateCart(c, session, func(st cart.State) cart.State {
		return cart.UpdateQuantity(st, productID, *req.Quantity)
	})
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:productId
func RemoveCartItem(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	productID := c.Param("productId")
	updateCart(c, session, func(st cart.State) cart.State {
		return cart.RemoveItem(st, productID)
	})
}

// ClearCart handles DELETE /api/v1/cart/items
func ClearCart(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	updateCart(c, session, cart.Clear)
}

// SetCartSidebar handles PUT /api/v1/cart/sidebar
func SetCartSidebar(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	var req SidebarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	updateCart(c, session, func(st cart.State) cart.State {
		return cart.SetSidebar(st, *req.Open)
	})
}

// EndCartSession handles DELETE /api/v1/cart/session - drops the cart on sign-out
func EndCartSession(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}
	if err := GetCartStore().Delete(c.Request.Context(), session); err != nil {
		zap.L().Error("failed to end cart session", zap.String("session", session), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "CART_ERROR", "Failed to end cart session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart session ended",
	})
}
