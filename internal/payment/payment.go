// Package payment talks to the payment gateway and confirms the payments
// the client reports after checkout.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

// OrderRequest asks the gateway for a new order.  Amount is in the
// currency's minor unit.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string            // our booking reference
	Notes    map[string]string // forwarded as gateway metadata
}

// Order is what the client needs to open the gateway checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Provider string `json:"provider"`
	// ClientSecret is set by gateways that confirm on the client (Stripe).
	ClientSecret string `json:"clientSecret,omitempty"`
}

// ConfirmRequest carries what the client reports after checkout together
// with the amount the booking expects, in minor units.
type ConfirmRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	Amount    int64
	Currency  string
}

// Gateway creates orders and confirms that a reported payment really
// settled them.  Confirm returns a Validation error when it did not.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	Confirm(ctx context.Context, req ConfirmRequest) error
	Name() string
}

// zeroDecimal lists ISO currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true,
	"MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// MinorUnits converts amount into the gateway's smallest unit: x100 for
// most currencies, x1 for zero-decimal ones.  Fractions below the minor
// unit are rejected instead of rounded.
func MinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if !amount.IsPositive() {
		return 0, apperr.Invalidf("amount must be positive")
	}
	factor := decimal.NewFromInt(100)
	if zeroDecimal[strings.ToUpper(currency)] {
		factor = decimal.NewFromInt(1)
	}
	minor := amount.Mul(factor)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, apperr.Invalidf("amount %s has more precision than %s allows", amount.String(), strings.ToUpper(currency))
	}
	return minor.IntPart(), nil
}

// Sign computes hex(HMAC-SHA256(secret, orderID + "|" + paymentID)), the
// signature the gateway hands to the client after a successful payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the expected value in constant
// time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
