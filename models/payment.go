package models

import (
	"time"

	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/lifecycle"
)

// DefaultCurrency is used for every payment
const DefaultCurrency = "USD"

// GatewayResponse records what the payment gateway answered
type GatewayResponse struct {
	TransactionID   string         `json:"transaction_id,omitempty"`
	Gateway         string         `json:"gateway,omitempty"`
	ResponseCode    string         `json:"response_code,omitempty"`
	ResponseMessage string         `json:"response_message,omitempty"`
	RawResponse     map[string]any `gorm:"serializer:json" json:"raw_response,omitempty"`
}

// PaymentDetails holds the sanitized method fields. The full card number
// and CVV are never stored
type PaymentDetails struct {
	CardLast4      string `json:"card_last4,omitempty"`
	CardBrand      string `json:"card_brand,omitempty"`
	UPIID          string `gorm:"column:upi_id" json:"upi_id,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	WalletProvider string `json:"wallet_provider,omitempty"`
}

// RefundDetails is filled in when a completed payment is refunded
type RefundDetails struct {
	RefundID     string     `json:"refund_id,omitempty"`
	RefundAmount float64    `json:"refund_amount,omitempty"`
	RefundReason string     `json:"refund_reason,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
}

// Payment is the single payment attempt that belongs to an order
type Payment struct {
	ID              uint                    `gorm:"primaryKey" json:"id"`
	OrderID         uint                    `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID          uint                    `gorm:"not null;index" json:"user_id"`
	Amount          float64                 `gorm:"not null" json:"amount"`
	Currency        string                  `gorm:"not null;default:'USD'" json:"currency"`
	PaymentMethod   gateway.Method          `gorm:"not null" json:"payment_method"`
	Status          lifecycle.PaymentStatus `gorm:"not null;default:'pending';index" json:"status"`
	GatewayResponse GatewayResponse         `gorm:"embedded;embeddedPrefix:gateway_" json:"gateway_response"`
	PaymentDetails  PaymentDetails          `gorm:"embedded;embeddedPrefix:details_" json:"payment_details"`
	RefundDetails   RefundDetails           `gorm:"embedded;embeddedPrefix:refund_" json:"refund_details"`
	ProcessedAt     *time.Time              `json:"processed_at,omitempty"`
	CreatedAt       time.Time               `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// RecordGateway copies a gateway result onto the payment
func (p *Payment) RecordGateway(res gateway.Result) {
	p.GatewayResponse = GatewayResponse{
		TransactionID:   res.TransactionID,
		Gateway:         res.Gateway,
		ResponseCode:    res.ResponseCode,
		ResponseMessage: res.Message,
		RawResponse:     res.Raw,
	}
}

// RecordDetails stores the sanitized form of the submitted method details
func (p *Payment) RecordDetails(d gateway.Details) {
	s := gateway.Summarize(d)
	p.PaymentDetails = PaymentDetails{
		CardLast4:      s.CardLast4,
		CardBrand:      s.CardBrand,
		UPIID:          s.UPIID,
		BankName:       s.BankName,
		WalletProvider: s.WalletProvider,
	}
}
