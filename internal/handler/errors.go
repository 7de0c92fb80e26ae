package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/Eursukkul/bus-booking/internal/middleware"
	"github.com/labstack/echo/v4"
)

// httpError turns a service error into an echo error carrying the caller-facing message.
func httpError(err error) *echo.HTTPError {
	he := echo.NewHTTPError(middleware.StatusFor(apperror.KindOf(err)), apperror.Message(err))
	return he.SetInternal(err)
}

func parseID(c echo.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return httpError(err)
	}
	return nil
}
