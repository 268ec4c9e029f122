package payment

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// ErrStripeClientInitFailed is returned when no usable key is supplied.
var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// Stripe creates a PaymentIntent per order.  The intent id doubles as the
// order id the booking stores.
type Stripe struct {
	client *client.API
	log    observability.Logger
}

func NewStripe(secretKey string, log observability.Logger) (*Stripe, error) {
	return newStripe(secretKey, nil, log)
}

// newStripe lets tests point the client at a local backend.
func newStripe(secretKey string, backends *stripe.Backends, log observability.Logger) (*Stripe, error) {
	if secretKey == "" {
		return nil, ErrStripeClientInitFailed
	}
	sc := client.New(secretKey, backends)
	if sc == nil {
		return nil, ErrStripeClientInitFailed
	}
	log.Info("stripe client initialized")
	return &Stripe{client: sc, log: log}, nil
}

func (*Stripe) Name() string { return "stripe" }

func (s *Stripe) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Metadata: map[string]string{"receipt": req.Receipt},
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.Metadata[k] = v
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		s.log.WithError(err).WithField("receipt", req.Receipt).Error("stripe payment intent failed")
		return Order{}, errors.Wrap(err, "stripe create payment intent")
	}
	return Order{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Provider:     "stripe",
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Confirm fetches the PaymentIntent behind the order and accepts it only
// once Stripe reports it succeeded for the expected amount.  There is no
// client signature in this flow.
func (s *Stripe) Confirm(ctx context.Context, req ConfirmRequest) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.client.PaymentIntents.Get(req.OrderID, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == 404 {
			return apperr.Invalidf("unknown payment order")
		}
		s.log.WithError(err).WithField("order_id", req.OrderID).Error("stripe payment intent lookup failed")
		return errors.Wrap(err, "stripe get payment intent")
	}
	return checkIntent(pi, req)
}

func checkIntent(pi *stripe.PaymentIntent, req ConfirmRequest) error {
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return apperr.Invalidf("payment is %s, not succeeded", pi.Status)
	}
	if pi.Amount != req.Amount || !strings.EqualFold(string(pi.Currency), req.Currency) {
		return apperr.Invalidf("payment of %d %s does not match the booking total",
			pi.Amount, strings.ToUpper(string(pi.Currency)))
	}
	if req.PaymentID != pi.ID && (pi.LatestCharge == nil || pi.LatestCharge.ID != req.PaymentID) {
		return apperr.Invalidf("payment does not belong to this order")
	}
	return nil
}
