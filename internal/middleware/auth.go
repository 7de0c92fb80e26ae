package middleware

import (
	"strings"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

var (
	ErrMissingToken = apperror.Unauthenticated("missing bearer token")
	ErrNoUser       = apperror.Unauthenticated("unauthenticated")
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// RequireUser rejects requests without a valid bearer token and stores the
// caller's user id on the context.
func RequireUser(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return ErrMissingToken
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				return err
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the id stored by RequireUser.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}

// SetUserID is used by handler tests that bypass RequireUser.
func SetUserID(c echo.Context, id uint) {
	c.Set(userIDKey, id)
}
