package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/service"
)

const (
	refreshCookie     = "refreshToken"
	headerAdminSignup = "X-Admin-Signup-Key"
)

// AuthHandler serves /api/auth and the /api/users/me routes.
type AuthHandler struct {
	svc *service.AuthService
	cfg config.Config
}

func NewAuthHandler(svc *service.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// sessionResp is returned by login and refresh.  The refresh token itself
// only travels in the cookie.
type sessionResp struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	Role        string      `json:"role"`
	User        *model.User `json:"user"`
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, raw string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    raw,
		Path:     h.cfg.RefreshCookiePath,
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     h.cfg.RefreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) session(c echo.Context, s *service.Session, msg string) error {
	h.setRefreshCookie(c, s.Refresh.Raw, s.Refresh.Exp)
	return withMessage(c, msg, sessionResp{
		AccessToken: s.Access.Token,
		ExpiresAt:   s.Access.Exp,
		Role:        s.User.Role,
		User:        s.User,
	})
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var in service.SignupInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.Signup(ctx, in, c.Request().Header.Get(headerAdminSignup))
	if err != nil {
		return err
	}
	msg := "Account created"
	if !u.IsVerified {
		msg = "Account created, awaiting admin verification"
	}
	return created(c, msg, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.svc.Login(ctx, in)
	if err != nil {
		return err
	}
	return h.session(c, s, "Logged in")
}

// RefreshToken rotates the refresh cookie and issues a new access token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var raw string
	if ck, err := c.Cookie(refreshCookie); err == nil {
		raw = ck.Value
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.svc.Refresh(ctx, raw)
	if err != nil {
		h.clearRefreshCookie(c)
		return err
	}
	return h.session(c, s, "Token refreshed")
}

// Logout revokes the cookie's refresh token and, for an authenticated
// caller, every other one.  The cookie is always cleared.
func (h *AuthHandler) Logout(c echo.Context) error {
	var raw string
	if ck, err := c.Cookie(refreshCookie); err == nil {
		raw = ck.Value
	}
	userID, _ := middleware.UserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	h.clearRefreshCookie(c)
	if err := h.svc.Logout(ctx, raw, userID); err != nil {
		return err
	}
	return done(c, "Logged out")
}

type emailReq struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword answers the same way whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var in emailReq
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.ForgotPassword(ctx, in.Email); err != nil {
		return err
	}
	return done(c, "If the email is registered, a new password has been sent")
}

func (h *AuthHandler) CheckUser(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.svc.CheckUser(ctx, c.QueryParam("email"))
	if err != nil {
		return err
	}
	return respond(c, map[string]bool{"exists": exists})
}

// ---- /api/users/me ----

func (h *AuthHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.Profile(ctx, a)
	if err != nil {
		return err
	}
	return respond(c, u)
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.ProfileInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.UpdateProfile(ctx, a, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Profile updated", u)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.PasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.ChangePassword(ctx, a, in); err != nil {
		return err
	}
	h.clearRefreshCookie(c)
	return done(c, "Password changed, please log in again")
}

func (h *AuthHandler) Deactivate(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.Deactivate(ctx, a); err != nil {
		return err
	}
	h.clearRefreshCookie(c)
	return done(c, "Account deactivated")
}
