// Package gateway is the inline payment simulator. It makes no network
// calls: the outcome depends only on the method and the supplied details.
package gateway

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/soilq/soilq-api/utils"
)

// Response codes written to the payment record.
const (
	CodeApproved = "00"
	CodeDeclined = "01"
)

// Decline reasons.
const (
	MsgInvalidCard   = "Invalid card details"
	MsgInvalidUPI    = "Invalid UPI ID"
	MsgInvalidMethod = "Invalid payment method"
)

// Result is the simulated processor's answer for one charge.
type Result struct {
	Success       bool           `json:"success"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Gateway       string         `json:"gateway,omitempty"`
	ResponseCode  string         `json:"response_code"`
	Message       string         `json:"message"`
	Raw           map[string]any `json:"raw,omitempty"`
	ProcessedAt   time.Time      `json:"processed_at"`
}

// Gateway evaluates charges. The clock is swappable for tests.
type Gateway struct {
	Now func() time.Time
}

// New returns a gateway on the wall clock.
func New() *Gateway {
	return &Gateway{Now: time.Now}
}

// Charge runs the acceptance rules for method against details. details may
// be nil for methods that DecodeDetails did not recognise.
func (g *Gateway) Charge(method Method, details Details) Result {
	now := g.Now()

	switch method {
	case MethodCOD:
		return g.approve(method, "COD", "Cash on Delivery confirmed", now)

	case MethodCard:
		card, _ := details.(CardDetails)
		if utf8.RuneCountInString(card.CardNumber) < 16 {
			return decline(method, MsgInvalidCard, now)
		}
		return g.approve(method, "CARD", "Payment successful", now)

	case MethodUPI:
		upi, _ := details.(UPIDetails)
		if upi.UPIID == "" || !strings.Contains(upi.UPIID, "@") {
			return decline(method, MsgInvalidUPI, now)
		}
		return g.approve(method, "UPI", "UPI payment successful", now)

	case MethodNetbanking:
		return g.approve(method, "NB", "Net banking payment successful", now)

	case MethodWallet:
		return g.approve(method, "WALLET", "Wallet payment successful", now)
	}

	return decline(method, MsgInvalidMethod, now)
}

func (g *Gateway) approve(method Method, prefix, message string, now time.Time) Result {
	txn := utils.NewReference(prefix, now)
	return Result{
		Success:       true,
		TransactionID: txn,
		Gateway:       string(method),
		ResponseCode:  CodeApproved,
		Message:       message,
		Raw: map[string]any{
			"simulated":      true,
			"method":         string(method),
			"transaction_id": txn,
			"response_code":  CodeApproved,
		},
		ProcessedAt: now,
	}
}

func decline(method Method, message string, now time.Time) Result {
	return Result{
		Success:      false,
		Gateway:      string(method),
		ResponseCode: CodeDeclined,
		Message:      message,
		Raw: map[string]any{
			"simulated":     true,
			"method":        string(method),
			"response_code": CodeDeclined,
			"reason":        message,
		},
		ProcessedAt: now,
	}
}
