package middleware // reusable HTTP middleware for the API

import (
    "strings"

    "github.com/cockroachdb/errors"
    "github.com/labstack/echo/v4"

    "github.com/shyam-539/GoTicket-server/internal/apperr"
    "github.com/shyam-539/GoTicket-server/internal/utils"
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id" // uint64
    ctxRole   = "role"    // string
)

// Messages for the three ways a bearer token can fail.
const (
    msgTokenMissing = "Authorization token missing"
    msgTokenExpired = "Token expired, please refresh"
    msgTokenInvalid = "Invalid token, please log in again"
)

// JWTAuth validates the Bearer access token and stores the caller's id and
// role in the Echo context.  An expired token is reported separately from
// a malformed one so clients know to call the refresh endpoint.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearer(c)
            if !ok {
                return apperr.New(apperr.Unauthorized, msgTokenMissing)
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return tokenError(err)
            }
            c.Set(ctxUserID, claims.UserID)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}

// OptionalJWT behaves like JWTAuth when a valid bearer token is present and
// lets the request through anonymously otherwise.  Logout uses it.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    c.Set(ctxUserID, claims.UserID)
                    c.Set(ctxRole, claims.Role)
                }
            }
            return next(c)
        }
    }
}

func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(auth[7:])
    return raw, raw != ""
}

func tokenError(err error) error {
    if errors.Is(err, utils.ErrTokenExpired) {
        return apperr.Wrap(err, apperr.TokenExpired, msgTokenExpired)
    }
    return apperr.Wrap(err, apperr.Unauthorized, msgTokenInvalid)
}
