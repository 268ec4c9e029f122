package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/service"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Create books seats for a show.  All requested seats are booked or none.
func (h *BookingHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.BookingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Book(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Seats booked, complete payment to confirm", b)
}

func (h *BookingHandler) ListMine(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListMine(ctx, a)
	if err != nil {
		return err
	}
	return respond(c, list)
}

// ListForOwner lists bookings on the caller's theaters, optionally for
// one show.
func (h *BookingHandler) ListForOwner(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	showID, err := uintQuery(c, "showId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListForOwner(ctx, a, showID)
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *BookingHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Get(ctx, a, id)
	if err != nil {
		return err
	}
	return respond(c, b)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Cancel(ctx, a, id)
	if err != nil {
		return err
	}
	return withMessage(c, "Booking cancelled", b)
}

// QR streams the receipt token as a PNG.  ?size= sets the edge in pixels.
func (h *BookingHandler) QR(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	size := intQuery(c, "size", defaultQRSize)
	if size < 64 || size > maxQRSize {
		size = defaultQRSize
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	png, err := h.svc.ReceiptQR(ctx, a, id, size)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "private, no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}
