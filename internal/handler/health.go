package handler // HTTP handlers of the API

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is the liveness probe used by load balancers.  It never touches
// a dependency.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, map[string]string{"status": "UP"})
}
