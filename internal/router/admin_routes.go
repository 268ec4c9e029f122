package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

func registerAdmin(api *echo.Group, h Handlers, m chain) {
	admin := middleware.RequireRole(model.RoleAdmin)

	// Movie approval lives under /movies but is admin only.
	api.PUT("/movies/:id/approve", h.Catalog.ApproveMovie, m.auth, admin)

	g := api.Group("/admin", m.auth, admin)
	g.GET("/users", h.Admin.ListUsers)
	g.DELETE("/users/:id", h.Admin.DeleteUser)
	g.PUT("/users/:id/verify", h.Admin.VerifyUser)
	g.GET("/theaters", h.Admin.ListTheaters)
	g.PUT("/theaters/:id/approve", h.Admin.ApproveTheater)
	g.DELETE("/theaters/:id", h.Admin.DeleteTheater)
	g.GET("/bookings/:id/audit", h.Admin.BookingAudit)
	g.GET("/notifications", h.Admin.ListNotifications)
	g.PUT("/notifications/:id", h.Admin.MarkNotificationRead)
}
