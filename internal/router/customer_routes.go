package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// registerCustomer mounts booking and payment routes.  Booking creation and
// payment verification honour Idempotency-Key.
func registerCustomer(api *echo.Group, h Handlers, m chain) {
	user := middleware.RequireRole(model.RoleUser)

	b := api.Group("/bookings", m.auth, user)
	b.POST("", h.Bookings.Create, m.limit, m.idem)
	b.GET("", h.Bookings.ListMine)
	b.GET("/:id", h.Bookings.Get)
	b.GET("/:id/qr", h.Bookings.QR)
	b.POST("/:id/cancel", h.Bookings.Cancel)
	api.POST("/user/book", h.Bookings.Create, m.auth, user, m.limit, m.idem)

	p := api.Group("/payment", m.auth)
	p.POST("/create-order", h.Payments.CreateOrder, user, m.limit)
	p.POST("/verify-payment", h.Payments.VerifyPayment, user, m.limit, m.idem)
	p.POST("/refund", h.Payments.Refund, middleware.RequireRole(model.RoleAdmin))
}
