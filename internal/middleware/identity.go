package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// UserLoader resolves an authenticated subject to its user row.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// LoadUser runs after JWTAuth.  It loads the user named by "user_id" and
// stores it under "user" and its role under "role".  Roles always come
// from the database so a promotion applies to tokens already issued.
func LoadUser(users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get("user_id").(string)
			if id == "" {
				return unauthorized(c, "unauthenticated")
			}
			u, err := users.GetByID(c.Request().Context(), id)
			if errors.Is(err, repository.ErrUserNotFound) {
				return unauthorized(c, "user not found")
			}
			if err != nil {
				c.Logger().Errorf("load user %s: %v", id, err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
			}
			c.Set("user", u)
			c.Set("role", string(u.Role))
			return next(c)
		}
	}
}

// currentUserID returns the authenticated subject or "anon".  It is used
// for rate limit keys.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
