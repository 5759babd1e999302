package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer token with
// keyFunc and stores its subject under "user_id".  keyFunc decides which
// issuers are trusted: an HMAC secret for locally issued tokens, the
// identity provider's JWKS, or both.
func JWTAuth(keyFunc jwt.Keyfunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			var claims jwt.RegisteredClaims
			tok, err := jwt.ParseWithClaims(raw, &claims, keyFunc, jwt.WithExpirationRequired())
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}
			if claims.Subject == "" {
				return unauthorized(c, "token has no subject")
			}

			c.Set("user_id", claims.Subject)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
}
