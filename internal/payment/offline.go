package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

// Offline issues order ids locally and confirms payments by their
// signature.  It is used when no gateway key is configured, e.g. in
// development, where the client signs with the shared secret itself.
type Offline struct{ secret string }

func NewOffline(secret string) *Offline { return &Offline{secret: secret} }

func (*Offline) Name() string { return "offline" }

func (*Offline) CreateOrder(_ context.Context, req OrderRequest) (Order, error) {
	return Order{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Amount:   req.Amount,
		Currency: strings.ToUpper(req.Currency),
		Provider: "offline",
	}, nil
}

func (o *Offline) Confirm(_ context.Context, req ConfirmRequest) error {
	if !VerifySignature(o.secret, req.OrderID, req.PaymentID, req.Signature) {
		return apperr.Invalidf("Payment signature verification failed")
	}
	return nil
}
