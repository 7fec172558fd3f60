package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Method is a supported payment method.
type Method string

const (
	MethodCOD        Method = "cod"
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetbanking Method = "netbanking"
	MethodWallet     Method = "wallet"
)

// Methods lists every supported method.
var Methods = []Method{MethodCOD, MethodCard, MethodUPI, MethodNetbanking, MethodWallet}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Details is the method-specific payload sent with a payment request. Each
// method has its own concrete type.
type Details interface {
	Method() Method
}

// CODDetails carries nothing; cash is collected on delivery.
type CODDetails struct{}

// CardDetails is a card payment payload.
type CardDetails struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holder_name"`
}

// UPIDetails is a UPI payment payload.
type UPIDetails struct {
	UPIID string `json:"upi_id"`
}

// NetbankingDetails is a net banking payload.
type NetbankingDetails struct {
	BankName string `json:"bank_name"`
}

// WalletDetails is a wallet payload.
type WalletDetails struct {
	Provider string `json:"wallet_provider"`
}

func (CODDetails) Method() Method        { return MethodCOD }
func (CardDetails) Method() Method       { return MethodCard }
func (UPIDetails) Method() Method        { return MethodUPI }
func (NetbankingDetails) Method() Method { return MethodNetbanking }
func (WalletDetails) Method() Method     { return MethodWallet }

// DecodeDetails decodes raw into the payload type for m. Empty input gives
// the zero payload. Unknown methods decode to nil without error so the
// gateway can decline them.
func DecodeDetails(m Method, raw json.RawMessage) (Details, error) {
	var d Details
	switch m {
	case MethodCOD:
		d = &CODDetails{}
	case MethodCard:
		d = &CardDetails{}
	case MethodUPI:
		d = &UPIDetails{}
	case MethodNetbanking:
		d = &NetbankingDetails{}
	case MethodWallet:
		d = &WalletDetails{}
	default:
		return nil, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(raw, d); err != nil {
			return nil, fmt.Errorf("invalid %s payment details: %w", m, err)
		}
	}
	return deref(d), nil
}

func deref(d Details) Details {
	switch v := d.(type) {
	case *CODDetails:
		return *v
	case *CardDetails:
		return *v
	case *UPIDetails:
		return *v
	case *NetbankingDetails:
		return *v
	case *WalletDetails:
		return *v
	}
	return d
}

// Summary is the part of a payload that is safe to store.
type Summary struct {
	CardLast4      string `json:"card_last4,omitempty"`
	CardBrand      string `json:"card_brand,omitempty"`
	UPIID          string `json:"upi_id,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	WalletProvider string `json:"wallet_provider,omitempty"`
}

// Summarize strips secrets from d. Card numbers keep only the last four digits.
func Summarize(d Details) Summary {
	switch v := d.(type) {
	case CardDetails:
		number := digitsOnly(v.CardNumber)
		s := Summary{CardBrand: cardBrand(number)}
		if len(number) >= 4 {
			s.CardLast4 = number[len(number)-4:]
		}
		return s
	case UPIDetails:
		return Summary{UPIID: v.UPIID}
	case NetbankingDetails:
		return Summary{BankName: v.BankName}
	case WalletDetails:
		return Summary{WalletProvider: v.Provider}
	}
	return Summary{}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cardBrand(number string) string {
	switch {
	case number == "":
		return ""
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "mastercard"
	case strings.HasPrefix(number, "60"), strings.HasPrefix(number, "65"), strings.HasPrefix(number, "81"):
		return "rupay"
	}
	return "unknown"
}
