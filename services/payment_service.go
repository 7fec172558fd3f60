package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/lifecycle"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/utils"
)

// DefaultRefundReason is recorded when the caller gives none
const DefaultRefundReason = "Customer request"

// ProcessResult is the outcome of a payment attempt. A declined charge is a
// result with Success false, not an error.
type ProcessResult struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Message       string          `json:"message"`
	Payment       *models.Payment `json:"payment"`
	Order         *models.Order   `json:"order"`
}

// PaymentService charges, looks up and refunds payments
type PaymentService struct {
	db      *gorm.DB
	gateway *gateway.Gateway
	now     func() time.Time
}

// NewPaymentService creates a payment service backed by db and the simulated gateway
func NewPaymentService(db *gorm.DB, gw *gateway.Gateway) *PaymentService {
	if gw == nil {
		gw = gateway.New()
	}
	return &PaymentService{db: db, gateway: gw, now: gw.Now}
}

// ProcessPayment charges the order's payment with method and raw details.
// On approval the payment completes and the order is confirmed and marked
// paid. On decline the payment fails and the order is left as it was.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID uint, method gateway.Method, raw json.RawMessage) (*ProcessResult, error) {
	if orderID == 0 {
		return nil, validationError(CodeValidation, "Order id is required")
	}
	details, err := gateway.DecodeDetails(method, raw)
	if err != nil {
		return nil, &ServiceError{Kind: KindValidation, Code: CodeValidation, Message: "Malformed payment details", Err: err}
	}

	db := s.db.WithContext(ctx)
	order, err := findOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := findPaymentByOrder(db, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := lifecycle.NextPayment(payment.Status, lifecycle.PaymentBegin); err != nil {
		return nil, businessRule(CodePaymentNotPending, "Payment has already been processed", err)
	}
	if _, err := lifecycle.NextOrder(order.Status, lifecycle.OrderConfirm); err != nil {
		return nil, businessRule(CodeIllegalTransition, "Order cannot be paid in its current status", err)
	}

	// claim the payment so a second request for the same order loses
	payment.Status = lifecycle.PaymentProcessing
	if err := saveIfStatus(db, payment, string(lifecycle.PaymentPending)); err != nil {
		return nil, err
	}

	res := s.gateway.Charge(method, details)
	payment.RecordGateway(res)
	attempt := *payment

	if !res.Success {
		if err := s.fail(db, payment); err != nil {
			s.abandon(ctx, &attempt, err)
			return nil, err
		}
		zap.L().Info("payment declined",
			zap.Uint("order_id", order.ID),
			zap.String("method", string(method)),
			zap.String("reason", res.Message),
		)
		return &ProcessResult{Success: false, Message: res.Message, Payment: payment, Order: order}, nil
	}

	if err := s.complete(db, order, payment, details, res); err != nil {
		s.abandon(ctx, &attempt, err)
		return nil, err
	}
	zap.L().Info("payment completed",
		zap.Uint("order_id", order.ID),
		zap.String("method", string(method)),
		zap.String("transaction_id", res.TransactionID),
	)
	return &ProcessResult{
		Success:       true,
		TransactionID: res.TransactionID,
		Message:       res.Message,
		Payment:       payment,
		Order:         order,
	}, nil
}

func (s *PaymentService) fail(db *gorm.DB, payment *models.Payment) error {
	next, err := lifecycle.NextPayment(payment.Status, lifecycle.PaymentFail)
	if err != nil {
		return internalError("Failed to record declined payment", err)
	}
	payment.Status = next
	return saveIfStatus(db, payment, string(lifecycle.PaymentProcessing))
}

// abandon settles a claimed payment whose outcome could not be written. It
// moves to failed with the gateway response kept, so it never stays in
// processing.
func (s *PaymentService) abandon(ctx context.Context, attempt *models.Payment, cause error) {
	next, err := lifecycle.NextPayment(attempt.Status, lifecycle.PaymentFail)
	if err != nil {
		return
	}
	attempt.Status = next

	db := s.db.WithContext(context.WithoutCancel(ctx))
	if err := saveIfStatus(db, attempt, string(lifecycle.PaymentProcessing)); err != nil {
		zap.L().Error("could not settle claimed payment",
			zap.Uint("payment_id", attempt.ID),
			zap.String("transaction_id", attempt.GatewayResponse.TransactionID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	zap.L().Warn("payment abandoned after charge",
		zap.Uint("payment_id", attempt.ID),
		zap.String("transaction_id", attempt.GatewayResponse.TransactionID),
		zap.Error(cause),
	)
}

func (s *PaymentService) complete(db *gorm.DB, order *models.Order, payment *models.Payment, details gateway.Details, res gateway.Result) error {
	paymentNext, err := lifecycle.NextPayment(payment.Status, lifecycle.PaymentSucceed)
	if err != nil {
		return internalError("Failed to record payment", err)
	}
	orderFrom := order.Status
	orderNext, err := lifecycle.NextOrder(orderFrom, lifecycle.OrderConfirm)
	if err != nil {
		return businessRule(CodeIllegalTransition, "Order cannot be paid in its current status", err)
	}

	processedAt := res.ProcessedAt
	payment.Status = paymentNext
	payment.ProcessedAt = &processedAt
	payment.RecordDetails(details)

	order.Status = orderNext
	order.PaymentStatus = lifecycle.PaymentStatePaid
	order.PaymentDetails = models.OrderPaymentDetails{
		TransactionID:  res.TransactionID,
		PaymentGateway: res.Gateway,
		PaidAt:         &processedAt,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := saveIfStatus(tx, payment, string(lifecycle.PaymentProcessing)); err != nil {
			return err
		}
		return saveIfStatus(tx, order, string(orderFrom))
	})
}

// GetPayment returns a payment by id
func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodePaymentNotFound, "Payment not found")
		}
		return nil, internalError("Failed to fetch payment", err)
	}
	return &payment, nil
}

// GetPaymentForUser returns a payment only if it belongs to userID
func (s *PaymentService) GetPaymentForUser(ctx context.Context, id, userID uint) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, forbidden("You can only access your own payments")
	}
	return payment, nil
}

// GetPaymentByOrder returns the payment that belongs to an order
func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID uint) (*models.Payment, error) {
	return findPaymentByOrder(s.db.WithContext(ctx), orderID)
}

// ListPaymentsByUser returns the user's payments, newest first
func (s *PaymentService) ListPaymentsByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, internalError("Failed to fetch payments", err)
	}
	return payments, nil
}

// RefundPayment refunds a completed payment. amount nil or zero refunds the
// full amount. The order is marked refunded and cancelled.
func (s *PaymentService) RefundPayment(ctx context.Context, id uint, reason string, amount *float64) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanRefund(payment.Status) {
		return nil, businessRule(CodeNotRefundable, "Only completed payments can be refunded", nil)
	}
	next, err := lifecycle.NextPayment(payment.Status, lifecycle.PaymentRefund)
	if err != nil {
		return nil, businessRule(CodeNotRefundable, "Only completed payments can be refunded", err)
	}

	refundAmount := payment.Amount
	if amount != nil && *amount != 0 {
		if *amount < 0 || *amount > payment.Amount {
			return nil, validationError(CodeInvalidRefundAmount, "Refund amount must be greater than zero and at most the payment amount")
		}
		refundAmount = *amount
	}
	if reason == "" {
		reason = DefaultRefundReason
	}

	now := s.now()
	from := payment.Status
	payment.Status = next
	payment.RefundDetails = models.RefundDetails{
		RefundID:     utils.NewReference("REF", now),
		RefundAmount: refundAmount,
		RefundReason: reason,
		RefundedAt:   &now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveIfStatus(tx, payment, string(from)); err != nil {
			return err
		}

		order, err := findOrder(tx, payment.OrderID)
		if err != nil {
			return err
		}
		orderFrom := order.Status
		orderNext, err := lifecycle.NextOrder(orderFrom, lifecycle.OrderRefund)
		if err != nil {
			return businessRule(CodeIllegalTransition, "Order cannot be refunded in its current status", err)
		}
		order.Status = orderNext
		order.PaymentStatus = lifecycle.PaymentStateRefunded
		return saveIfStatus(tx, order, string(orderFrom))
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("payment refunded",
		zap.Uint("payment_id", payment.ID),
		zap.String("refund_id", payment.RefundDetails.RefundID),
		zap.Float64("amount", refundAmount),
	)
	return payment, nil
}

func findPaymentByOrder(db *gorm.DB, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodePaymentNotFound, "Payment record not found")
		}
		return nil, internalError("Failed to fetch payment", err)
	}
	return &payment, nil
}
