package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/cart"
	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/lifecycle"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/services"
)

// CreateOrderRequest represents the request body for creating an order.
// The money breakdown is optional; when any part is missing the order is
// priced with the shop's shipping fee and tax rate.
type CreateOrderRequest struct {
	Items           []models.OrderItem     `json:"items"`
	PaymentMethod   gateway.Method         `json:"payment_method" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
	Subtotal        *float64               `json:"subtotal"`
	Shipping        *float64               `json:"shipping"`
	Tax             *float64               `json:"tax"`
	Total           *float64               `json:"total"`
}

func (r CreateOrderRequest) totals(p services.Pricing) services.Totals {
	if r.Subtotal == nil || r.Shipping == nil || r.Tax == nil || r.Total == nil {
		return p.Quote(r.Items)
	}
	return services.Totals{Subtotal: *r.Subtotal, Shipping: *r.Shipping, Tax: *r.Tax, Total: *r.Total}
}

// CheckoutRequest places an order for everything in the session cart
type CheckoutRequest struct {
	PaymentMethod   gateway.Method         `json:"payment_method" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
}

// UpdateOrderStatusRequest represents the request body for moving an order
type UpdateOrderStatusRequest struct {
	Status lifecycle.OrderStatus `json:"status" binding:"required"`
}

// CancelOrderRequest carries an optional cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func shopPricing() services.Pricing {
	cfg := config.GetConfig()
	return services.Pricing{ShippingFee: cfg.ShippingFee, TaxRate: cfg.TaxRate}
}

func respondOrderCreated(c *gin.Context, order *models.Order, payment *models.Payment) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order":   order,
			"payment": payment,
		},
	})
}

// CreateOrder handles POST /api/v1/orders - places an order with its pending payment
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	order, payment, err := services.NewOrderService(config.GetDB()).CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:          user.ID,
		Items:           req.Items,
		Totals:          req.totals(shopPricing()),
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOrderCreated(c, order, payment)
}

// Checkout handles POST /api/v1/orders/checkout - orders the cart, then empties it
func Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	store := GetCartStore()
	st, err := store.Get(ctx, user.Auth0ID)
	if err != nil {
		zap.L().Error("failed to load cart", zap.Uint("user_id", user.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "CART_ERROR", "Failed to load cart")
		return
	}

	items := cart.OrderItems(st)
	order, payment, err := services.NewOrderService(config.GetDB()).CreateOrder(ctx, services.CreateOrderInput{
		UserID:          user.ID,
		Items:           items,
		Totals:          shopPricing().Quote(items),
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := cart.Update(ctx, store, user.Auth0ID, cart.Clear); err != nil {
		// the order stands; a stale cart is only an annoyance
		zap.L().Warn("failed to clear cart after checkout", zap.Uint("order_id", order.ID), zap.Error(err))
	}

	respondOrderCreated(c, order, payment)
}

// GetOrders handles GET /api/v1/orders - the user's orders, newest first
func GetOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := services.NewOrderService(config.GetDB()).ListOrdersByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).GetOrderForUser(c.Request.Context(), id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - shop staff only
func UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := services.NewOrderService(config.GetDB()).UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if auth0ID, err := middleware.GetUserID(c); err == nil {
		zap.L().Info("order status changed by staff",
			zap.Uint("order_id", order.ID),
			zap.String("status", string(order.Status)),
			zap.String("by", auth0ID),
		)
	}
	respondOK(c, http.StatusOK, order)
}

// CancelOrder handles PUT /api/v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	svc := services.NewOrderService(config.GetDB())
	ctx := c.Request.Context()
	if _, err := svc.GetOrderForUser(ctx, id, user.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := svc.CancelOrder(ctx, id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}
