package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers GET /healthz with a plain "ok".  Load balancers and
// monitoring probe it to verify the service is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
