package middleware

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/Eursukkul/bus-booking/internal/dto"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	"github.com/labstack/echo/v4"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders every error as {"message": "..."}. Classified errors keep
// their message; internal failures are logged and reported generically.
func NewErrorHandler(log logger.ILogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal error"

		var (
			he *echo.HTTPError
			ae *apperror.Error
		)
		switch {
		case errors.As(err, &he):
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		case errors.As(err, &ae):
			code = StatusFor(ae.Kind)
			msg = apperror.Message(err)
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Path()),
				logger.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, dto.ErrorResponse{Message: msg})
	}
}
