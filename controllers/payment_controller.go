package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/services"
)

// ScopeRefundPayments lets shop staff refund any customer's payment
const ScopeRefundPayments = "refund:payments"

// ProcessPaymentRequest represents the request body for paying an order.
// PaymentMethod defaults to the method chosen at checkout.
type ProcessPaymentRequest struct {
	OrderID        uint            `json:"order_id" binding:"required"`
	PaymentMethod  gateway.Method  `json:"payment_method"`
	PaymentDetails json.RawMessage `json:"payment_details"`
}

// RefundPaymentRequest represents the request body for a refund. A missing
// or zero amount refunds the whole payment.
type RefundPaymentRequest struct {
	Reason string   `json:"reason"`
	Amount *float64 `json:"amount"`
}

// ProcessPayment handles POST /api/v1/payments/process - charges an order's payment
func ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	ctx := c.Request.Context()
	order, err := services.NewOrderService(db).GetOrderForUser(ctx, req.OrderID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	method := req.PaymentMethod
	if method == "" {
		method = order.PaymentMethod
	}

	res, err := services.NewPaymentService(db, nil).ProcessPayment(ctx, order.ID, method, req.PaymentDetails)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !res.Success {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_DECLINED",
				"message": res.Message,
			},
			"data": res,
		})
		return
	}
	respondOK(c, http.StatusOK, res)
}

// GetPayments handles GET /api/v1/payments - the user's payments, newest first
func GetPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payments, err := services.NewPaymentService(config.GetDB(), nil).ListPaymentsByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payments,
		"count":   len(payments),
	})
}

// GetPayment handles GET /api/v1/payments/:id
func GetPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := services.NewPaymentService(config.GetDB(), nil).GetPaymentForUser(c.Request.Context(), id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, payment)
}

// RefundPayment handles POST /api/v1/payments/:id/refund. Customers refund
// their own payments; staff with the refund scope may refund any.
func RefundPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RefundPaymentRequest
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

	svc := services.NewPaymentService(config.GetDB(), nil)
	ctx := c.Request.Context()
	if !hasScope(c, ScopeRefundPayments) {
		if _, err := svc.GetPaymentForUser(ctx, id, user.ID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	payment, err := svc.RefundPayment(ctx, id, req.Reason, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, payment)
}

func hasScope(c *gin.Context, scope string) bool {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		return false
	}
	custom, ok := claims.CustomClaims.(*middleware.CustomClaims)
	return ok && custom.HasScope(scope)
}
