package handler

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// errorBody is the failure envelope.
type errorBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

// NewErrorHandler renders every error as {"success":false,"message":...}.
// With dev set the %+v rendering of the error, stack included, is added
// under "stack".
func NewErrorHandler(dev bool, log observability.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		err = classify(err)
		status := apperr.Status(err)
		body := errorBody{Message: apperr.Message(err)}
		if e, ok := apperr.As(err); ok {
			body.Details = e.Details
			if e.Kind == apperr.TokenExpired {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate,
					`Bearer error="invalid_token", error_description="token expired"`)
			}
		}
		if dev {
			body.Stack = fmt.Sprintf("%+v", err)
		}

		entry := log.WithError(err).WithFields(map[string]interface{}{
			"status": status,
			"method": c.Request().Method,
			"route":  c.Path(),
		})
		if status >= http.StatusInternalServerError {
			entry.WithField("stack", fmt.Sprintf("%+v", err)).Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.WithError(err).Warn("error response not written")
		}
	}
}

// classify maps errors raised by Echo itself (unknown route, bad method,
// body too large) onto the application taxonomy.
func classify(err error) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}
	var kind apperr.Kind
	switch he.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		kind = apperr.Validation
	case http.StatusUnauthorized:
		kind = apperr.Unauthorized
	case http.StatusForbidden:
		kind = apperr.Forbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		kind = apperr.NotFound
	case http.StatusConflict:
		kind = apperr.Conflict
	case http.StatusTooManyRequests:
		kind = apperr.TooManyRequests
	default:
		return apperr.Wrap(err, apperr.Internal, msg)
	}
	return apperr.Wrap(err, kind, msg)
}
