package models

import (
	"time"

	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/lifecycle"
)

// OrderItem is a product line snapshotted when the order was placed
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// ShippingAddress is where the order is delivered. Every field is required
type ShippingAddress struct {
	Name    string `gorm:"not null" json:"name"`
	Address string `gorm:"not null" json:"address"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Pincode string `gorm:"not null" json:"pincode"`
	Phone   string `gorm:"not null" json:"phone"`
}

// Complete reports whether every address field is filled in
func (a ShippingAddress) Complete() bool {
	return a.Name != "" && a.Address != "" && a.City != "" &&
		a.State != "" && a.Pincode != "" && a.Phone != ""
}

// OrderPaymentDetails is set on the order once its payment completes
type OrderPaymentDetails struct {
	TransactionID  string     `json:"transaction_id,omitempty"`
	PaymentGateway string     `json:"payment_gateway,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// Order represents a purchase of agricultural inputs
type Order struct {
	ID              uint                   `gorm:"primaryKey" json:"id"`
	UserID          uint                   `gorm:"not null;index" json:"user_id"`
	OrderNumber     string                 `gorm:"uniqueIndex;not null" json:"order_number"`
	Items           []OrderItem            `gorm:"serializer:json;not null" json:"items"`
	Subtotal        float64                `gorm:"not null" json:"subtotal"`
	Shipping        float64                `gorm:"not null" json:"shipping"`
	Tax             float64                `gorm:"not null" json:"tax"`
	Total           float64                `gorm:"not null" json:"total"`
	Status          lifecycle.OrderStatus  `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus   lifecycle.PaymentState `gorm:"not null;default:'pending'" json:"payment_status"`
	PaymentMethod   gateway.Method         `gorm:"not null" json:"payment_method"`
	ShippingAddress ShippingAddress        `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentDetails  OrderPaymentDetails    `gorm:"embedded;embeddedPrefix:payment_" json:"payment_details"`
	Notes           string                 `json:"notes"`
	CreatedAt       time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
