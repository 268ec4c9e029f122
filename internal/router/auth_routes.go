package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/handler"
	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// registerAuth mounts /api/auth (public, rate limited) and /api/users/me.
func registerAuth(api *echo.Group, a *handler.AuthHandler, m chain) {
	g := api.Group("/auth", m.limit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.RefreshToken)
	g.POST("/forgot-password", a.ForgotPassword)
	g.GET("/check-user", a.CheckUser)
	// Logout works with or without a bearer; with one, all sessions end.
	g.POST("/logout", a.Logout, m.optional)

	me := api.Group("/users/me", m.auth,
		middleware.RequireRole(model.RoleUser, model.RoleTheaterOwner, model.RoleAdmin))
	me.GET("", a.Me)
	me.PUT("", a.UpdateMe)
	me.PUT("/password", a.ChangePassword)
	me.PUT("/deactivate", a.Deactivate)
}
