package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/service"
)

// AdminHandler serves /api/admin.  Every route requires the admin role.
type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.svc.ListUsers(ctx, c.QueryParam("role"))
	if err != nil {
		return err
	}
	return respond(c, users)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
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

	if err := h.svc.DeleteUser(ctx, a, id); err != nil {
		return err
	}
	return done(c, "User deleted")
}

func (h *AdminHandler) VerifyUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.VerifyUser(ctx, id)
	if err != nil {
		return err
	}
	return withMessage(c, "User verified", u)
}

func (h *AdminHandler) ListTheaters(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListTheaters(ctx, c.QueryParam("city"))
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *AdminHandler) ApproveTheater(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in approveReq
	if c.Request().ContentLength != 0 {
		if err := bind(c, &in); err != nil {
			return err
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.svc.ApproveTheater(ctx, id, in.value())
	if err != nil {
		return err
	}
	return withMessage(c, "Theater approval updated", t)
}

func (h *AdminHandler) DeleteTheater(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.DeleteTheater(ctx, id); err != nil {
		return err
	}
	return done(c, "Theater deleted")
}

func (h *AdminHandler) ListNotifications(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListNotifications(ctx, boolQuery(c, "unread"))
	if err != nil {
		return err
	}
	return respond(c, list)
}

// MarkNotificationRead flags a notification read; reading an owner signup
// notification verifies that owner.
func (h *AdminHandler) MarkNotificationRead(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.svc.MarkNotificationRead(ctx, id)
	if err != nil {
		return err
	}
	return withMessage(c, "Notification marked read", n)
}

func (h *AdminHandler) BookingAudit(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	trail, err := h.svc.BookingAudit(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, trail)
}
