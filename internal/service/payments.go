package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/mailer"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/payment"
	"github.com/shyam-539/GoTicket-server/internal/queue"
)

type OrderInput struct {
	BookingID uint64           `json:"bookingId" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Currency  string           `json:"currency" validate:"omitempty,len=3,alpha"`
}

type VerifyInput struct {
	BookingID uint64 `json:"bookingId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required,max=100"`
	PaymentID string `json:"paymentId" validate:"required,max=100"`
	Signature string `json:"signature" validate:"omitempty,hexadecimal"`
}

type RefundInput struct {
	BookingID uint64           `json:"bookingId" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Reason    string           `json:"reason" validate:"required,max=255"`
}

// OrderResult pairs the gateway order with the booking it pays for.
type OrderResult struct {
	Order     payment.Order `json:"order"`
	BookingID uint64        `json:"bookingId"`
	Amount    string        `json:"amount"`
}

// VerifyResult reports the booking after verification.  AlreadyVerified
// is set when the same payment had been verified before.
type VerifyResult struct {
	Booking         *model.Booking `json:"booking"`
	AlreadyVerified bool           `json:"alreadyVerified"`
}

// PaymentService creates gateway orders for bookings and confirms the
// payments the gateway reports back.
type PaymentService struct {
	bookings  BookingStore
	users     UserStore
	gateway   payment.Gateway
	publisher EventPublisher
	audit     AuditStore
	mail      mailer.Mailer
	currency  string
	log       observability.Logger
	now       func() time.Time
}

// PaymentDeps groups the optional collaborators of PaymentService.  Nil
// publisher, audit or mail disable that side effect.
type PaymentDeps struct {
	Publisher EventPublisher
	Audit     AuditStore
	Mail      mailer.Mailer
}

func NewPaymentService(bookings BookingStore, users UserStore, gateway payment.Gateway, deps PaymentDeps,
	currency string, log observability.Logger) *PaymentService {
	return &PaymentService{
		bookings:  bookings,
		users:     users,
		gateway:   gateway,
		publisher: deps.Publisher,
		audit:     deps.Audit,
		mail:      deps.Mail,
		currency:  strings.ToUpper(currency),
		log:       log,
		now:       time.Now,
	}
}

func (s *PaymentService) ownBooking(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.NotFoundf("booking not found")
	}
	return b, nil
}

// bookingCurrency is the currency the booking total was priced in.
func (s *PaymentService) bookingCurrency(b *model.Booking) string {
	if b.Currency == "" {
		return s.currency
	}
	return strings.ToUpper(b.Currency)
}

// CreateOrder opens a gateway order for the booking total, always in the
// booking's own currency.
func (s *PaymentService) CreateOrder(ctx context.Context, actor Actor, in OrderInput) (*OrderResult, error) {
	b, err := s.ownBooking(ctx, actor, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != model.PaymentPending || b.BookingStatus != model.BookingConfirmed {
		return nil, apperr.Conflictf("booking is not awaiting payment")
	}
	if in.Amount != nil && !in.Amount.Equal(b.TotalAmount) {
		return nil, apperr.Invalidf("amount %s does not match the booking total %s",
			in.Amount.StringFixed(2), b.TotalAmount.StringFixed(2))
	}
	currency := s.bookingCurrency(b)
	if in.Currency != "" && !strings.EqualFold(in.Currency, currency) {
		return nil, apperr.Invalidf("booking is priced in %s, not %s", currency, strings.ToUpper(in.Currency))
	}
	minor, err := payment.MinorUnits(b.TotalAmount, currency)
	if err != nil {
		return nil, err
	}
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  b.Reference,
		Notes:    map[string]string{"bookingId": fmt.Sprint(b.ID), "userId": fmt.Sprint(b.UserID)},
	})
	if err != nil {
		return nil, err
	}
	if err := s.bookings.SetOrder(ctx, b.ID, order.ID); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"booking_id": b.ID, "order_id": order.ID, "provider": order.Provider}).Info("payment order created")
	return &OrderResult{Order: order, BookingID: b.ID, Amount: b.TotalAmount.StringFixed(2)}, nil
}

// Verify has the gateway confirm the payment and marks the booking paid.  Replays
// of the same payment succeed with AlreadyVerified and cause no further
// state change or side effect.
func (s *PaymentService) Verify(ctx context.Context, actor Actor, in VerifyInput) (*VerifyResult, error) {
	ctx, span := observability.Tracer("payment").Start(ctx, "payment.Verify")
	defer span.End()
	span.SetAttributes(attribute.Int64("booking.id", int64(in.BookingID)))

	res, outcome, err := s.verify(ctx, actor, in)
	observability.PaymentVerificationsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

func (s *PaymentService) verify(ctx context.Context, actor Actor, in VerifyInput) (*VerifyResult, string, error) {
	b, err := s.ownBooking(ctx, actor, in.BookingID)
	if err != nil {
		return nil, "rejected", err
	}
	currency := s.bookingCurrency(b)
	minor, err := payment.MinorUnits(b.TotalAmount, currency)
	if err != nil {
		return nil, "rejected", err
	}
	if err := s.gateway.Confirm(ctx, payment.ConfirmRequest{
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Signature: in.Signature,
		Amount:    minor,
		Currency:  currency,
	}); err != nil {
		if apperr.Is(err, apperr.Validation) {
			return nil, "unconfirmed", err
		}
		return nil, "error", err
	}
	if res, done, err := s.replay(b, in); done {
		return res, "replayed", err
	}
	if b.OrderID == "" || b.OrderID != in.OrderID {
		return nil, "rejected", apperr.Invalidf("order does not belong to this booking")
	}

	transitioned, err := s.bookings.MarkPaid(ctx, b.ID, in.OrderID, in.PaymentID, s.now())
	if err != nil {
		return nil, "error", err
	}
	b, err = s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, "error", err
	}
	if !transitioned {
		// Lost a race with a concurrent verification.
		if res, done, err := s.replay(b, in); done {
			return res, "replayed", err
		}
		return nil, "rejected", apperr.Conflictf("booking is not awaiting payment")
	}

	s.confirmed(actor, b)
	return &VerifyResult{Booking: b}, "ok", nil
}

// replay resolves a verification against a booking that is no longer
// pending.  done is false while the booking still awaits payment.
func (s *PaymentService) replay(b *model.Booking, in VerifyInput) (*VerifyResult, bool, error) {
	switch {
	case b.PaymentStatus == model.PaymentPending && b.BookingStatus == model.BookingConfirmed:
		return nil, false, nil
	case b.PaymentStatus == model.PaymentCompleted && b.PaymentID == in.PaymentID && b.OrderID == in.OrderID:
		return &VerifyResult{Booking: b, AlreadyVerified: true}, true, nil
	case b.PaymentStatus == model.PaymentCompleted:
		return nil, true, apperr.Conflictf("booking was already paid with a different payment")
	}
	return nil, true, apperr.Conflictf("booking is %s (payment %s) and cannot be paid", b.BookingStatus, b.PaymentStatus)
}

// confirmed runs the side effects of a completed payment.  They must not
// fail the request, so errors are only logged.
func (s *PaymentService) confirmed(actor Actor, b *model.Booking) {
	ctx, cancel := detached(5 * time.Second)
	defer cancel()

	if s.publisher != nil {
		paidAt := s.now().UTC()
		if b.PaidAt != nil {
			paidAt = b.PaidAt.UTC()
		}
		// the publisher logs and counts its own failures
		_ = s.publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:   b.ID,
			Reference:   b.Reference,
			UserID:      b.UserID,
			ShowID:      b.ShowID,
			TheaterID:   b.TheaterID,
			MovieID:     b.MovieID,
			SeatLabels:  b.Labels(),
			TotalAmount: b.TotalAmount.StringFixed(2),
			Currency:    b.Currency,
			PaymentID:   b.PaymentID,
			ConfirmedAt: paidAt.Format(time.RFC3339),
		})
	}
	recordAudit(ctx, s.audit, s.log, "payment.completed", actor.ID, b,
		map[string]interface{}{"orderId": b.OrderID, "paymentId": b.PaymentID})

	if s.mail == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("confirmation mail skipped")
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nyour booking %s is confirmed.\nSeats: %s\nAmount paid: %s %s\n",
		u.Name, b.Reference, strings.Join(b.Labels(), ", "), b.TotalAmount.StringFixed(2), b.Currency)
	if err := s.mail.Send(ctx, u.Email, "Booking confirmed: "+b.Reference, body); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("confirmation mail failed")
	}
}

// Refund refunds a completed payment, cancels the booking and releases its
// seats.  Only admins may call it.
func (s *PaymentService) Refund(ctx context.Context, actor Actor, in RefundInput) (*model.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbiddenf("Only admins can refund payments")
	}
	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != model.PaymentCompleted {
		return nil, apperr.Conflictf("only completed payments can be refunded")
	}
	amount := b.TotalAmount
	if in.Amount != nil {
		amount = *in.Amount
	}
	if !amount.IsPositive() || amount.GreaterThan(b.TotalAmount) {
		return nil, apperr.Invalidf("refund amount must be between 0 and %s", b.TotalAmount.StringFixed(2))
	}
	if err := s.bookings.Refund(ctx, b.ID, amount, strings.TrimSpace(in.Reason), s.now()); err != nil {
		return nil, err
	}
	b, err = s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.log, "payment.refunded", actor.ID, b,
		map[string]interface{}{"refundAmount": amount.StringFixed(2), "reason": in.Reason})
	return b, nil
}
