package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/service"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.OrderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.svc.CreateOrder(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Order created", res)
}

// VerifyPayment confirms a payment.  Repeating a successful verification
// returns the booking with alreadyVerified set.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.VerifyInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.svc.Verify(ctx, a, in)
	if err != nil {
		return err
	}
	msg := "Payment verified"
	if res.AlreadyVerified {
		msg = "Payment already verified"
	}
	return withMessage(c, msg, res)
}

func (h *PaymentHandler) Refund(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.RefundInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Refund(ctx, a, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Payment refunded", b)
}
