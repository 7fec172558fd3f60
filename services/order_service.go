package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/lifecycle"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/utils"
)

// CreateOrderInput is everything needed to place an order
type CreateOrderInput struct {
	UserID          uint
	Items           []models.OrderItem
	Totals          Totals
	PaymentMethod   gateway.Method
	ShippingAddress models.ShippingAddress
	Notes           string
}

// OrderService places orders and moves them through their lifecycle
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewOrderService creates an order service backed by db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// CreateOrder persists a pending order and its pending payment in one transaction
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, *models.Payment, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, nil, err
	}

	now := s.now()
	order := models.Order{
		UserID:          in.UserID,
		OrderNumber:     utils.NewOrderNumber(now),
		Items:           in.Items,
		Subtotal:        in.Totals.Subtotal,
		Shipping:        in.Totals.Shipping,
		Tax:             in.Totals.Tax,
		Total:           in.Totals.Total,
		Status:          lifecycle.OrderPending,
		PaymentStatus:   lifecycle.PaymentStatePending,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
	}
	var payment models.Payment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationError(CodeInvalidUser, "User does not exist")
			}
			return internalError("Failed to look up user", err)
		}

		if err := tx.Create(&order).Error; err != nil {
			return internalError("Failed to create order", err)
		}

		payment = models.Payment{
			OrderID:       order.ID,
			UserID:        in.UserID,
			Amount:        order.Total,
			Currency:      models.DefaultCurrency,
			PaymentMethod: in.PaymentMethod,
			Status:        lifecycle.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return internalError("Failed to create payment record", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", order.UserID),
		zap.Float64("total", order.Total),
	)
	return &order, &payment, nil
}

func validateOrderInput(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return validationError(CodeEmptyOrder, "Order must contain at least one item")
	}
	if in.UserID == 0 {
		return validationError(CodeInvalidUser, "User id is required")
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Name == "" {
			return validationError(CodeValidation, "Every item needs a product id and name")
		}
		if item.Quantity <= 0 {
			return validationError(CodeValidation, "Item quantity must be greater than zero")
		}
		if item.Price < 0 {
			return validationError(CodeValidation, "Item price must not be negative")
		}
	}
	if !in.PaymentMethod.Valid() {
		return validationError(CodeInvalidMethod, "Payment method must be one of cod, card, upi, netbanking, wallet")
	}
	if !in.ShippingAddress.Complete() {
		return validationError(CodeIncompleteAddress, "Shipping address requires name, address, city, state, pincode and phone")
	}
	if !in.Totals.Consistent() || in.Totals.Total < 0 {
		return validationError(CodeTotalMismatch, "Order total must equal subtotal plus shipping plus tax")
	}
	return nil
}

// ListOrdersByUser returns the user's orders, newest first
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, internalError("Failed to fetch orders", err)
	}
	return orders, nil
}

// GetOrder returns a single order by id
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return findOrder(s.db.WithContext(ctx), id)
}

// GetOrderForUser returns an order only if it belongs to userID
func (s *OrderService) GetOrderForUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, forbidden("You can only access your own orders")
	}
	return order, nil
}

// UpdateOrderStatus moves an order to target. Cancellation goes through
// CancelOrder so the companion payment follows.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, target lifecycle.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, validationError(CodeInvalidStatus, "Unknown order status")
	}
	if target == lifecycle.OrderCancelled {
		return s.CancelOrder(ctx, id, "")
	}
	ev, ok := lifecycle.EventForTarget(target)
	if !ok {
		return nil, validationError(CodeInvalidStatus, "Orders cannot be moved back to pending")
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.NextOrder(order.Status, ev)
	if err != nil {
		return nil, businessRule(CodeIllegalTransition, "Order cannot move from "+string(order.Status)+" to "+string(target), err)
	}

	from := order.Status
	order.Status = next
	if err := saveIfStatus(s.db.WithContext(ctx), order, string(from)); err != nil {
		return nil, err
	}

	zap.L().Info("order status updated",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	return order, nil
}

// CancelOrder cancels a pending or confirmed order. Unless the order is cash
// on delivery its payment is cancelled too; no refund is issued.
func (s *OrderService) CancelOrder(ctx context.Context, id uint, reason string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanCancel(order.Status) {
		return nil, businessRule(CodeNotCancellable, "Order cannot be cancelled in its current status", nil)
	}
	next, err := lifecycle.NextOrder(order.Status, lifecycle.OrderCancel)
	if err != nil {
		return nil, businessRule(CodeNotCancellable, "Order cannot be cancelled in its current status", err)
	}

	from := order.Status
	order.Status = next
	order.Notes = CancellationNote(reason)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveIfStatus(tx, order, string(from)); err != nil {
			return err
		}
		if order.PaymentMethod == gateway.MethodCOD {
			return nil
		}
		return cancelPayment(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order cancelled", zap.Uint("order_id", order.ID), zap.String("from", string(from)))
	return order, nil
}

// CancellationNote formats the note stored on a cancelled order
func CancellationNote(reason string) string {
	if reason == "" {
		return "Order cancelled"
	}
	return "Cancelled: " + reason
}

func cancelPayment(tx *gorm.DB, orderID uint) error {
	var payment models.Payment
	if err := tx.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("cancelled order has no payment record", zap.Uint("order_id", orderID))
			return nil
		}
		return internalError("Failed to load payment", err)
	}

	next, err := lifecycle.NextPayment(payment.Status, lifecycle.PaymentOrderCancelled)
	if err != nil {
		// already cancelled or refunded
		zap.L().Warn("payment left unchanged on cancel",
			zap.Uint("payment_id", payment.ID),
			zap.String("status", string(payment.Status)),
		)
		return nil
	}

	from := payment.Status
	payment.Status = next
	return saveIfStatus(tx, &payment, string(from))
}

func findOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeOrderNotFound, "Order not found")
		}
		return nil, internalError("Failed to fetch order", err)
	}
	return &order, nil
}

// saveIfStatus writes every column of rec provided the stored status is
// still from. A miss means another request moved the record first.
func saveIfStatus(db *gorm.DB, rec any, from string) error {
	res := db.Model(rec).
		Where("status = ?", from).
		Select("*").
		Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		return internalError("Failed to update record", res.Error)
	}
	if res.RowsAffected == 0 {
		return businessRule(CodeConcurrentUpdate, "Record was changed by another request, reload and retry", nil)
	}
	return nil
}
