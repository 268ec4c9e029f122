package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/service"
)

// dbTimeout bounds the storage work of one request.
const dbTimeout = 5 * time.Second

// envelope is the success body: {"success":true,"message"?,"data"}.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func created(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Message: msg, Data: data})
}

func done(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

func withMessage(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: msg, Data: data})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actor returns the authenticated caller.  Routes using it sit behind
// JWTAuth, so a missing identity means the router is misconfigured.
func actor(c echo.Context) (service.Actor, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, apperr.Unauthorizedf("Authorization token missing")
	}
	return service.Actor{ID: id, Role: middleware.Role(c)}, nil
}

// optionalActor is actor for public routes that show more to some callers.
func optionalActor(c echo.Context) *service.Actor {
	if a, err := actor(c); err == nil {
		return &a
	}
	return nil
}

func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalidf("invalid %s", name)
	}
	return id, nil
}

func uintQuery(c echo.Context, name string) (uint64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, apperr.Invalidf("invalid %s", name)
	}
	return n, nil
}

func intQuery(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}

func boolQuery(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}
