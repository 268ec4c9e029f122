package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// RequestLogger writes one structured line per request.  Handler errors
// are rendered here so the logged status is the one the client received.
func RequestLogger(log observability.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			req, res := c.Request(), c.Response()
			entry := log.WithFields(map[string]interface{}{
				"method":     req.Method,
				"route":      c.Path(),
				"uri":        req.RequestURI,
				"status":     res.Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"bytes_out":  res.Size,
				"request_id": res.Header().Get(echo.HeaderXRequestID),
				"user_id":    identity(c),
				"remote_ip":  c.RealIP(),
			})
			switch {
			case res.Status >= 500:
				entry.Error("request failed")
			case res.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}
