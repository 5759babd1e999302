package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// Auth is the middleware chain of routes that need a signed-in user:
// JWTAuth followed by LoadUser.
type Auth []echo.MiddlewareFunc

// Authenticated builds the Auth chain.  keyFunc decides which tokens are
// accepted; users resolves their subject.
func Authenticated(keyFunc jwt.Keyfunc, users middleware.UserLoader) Auth {
	return Auth{middleware.JWTAuth(keyFunc), middleware.LoadUser(users)}
}

// With returns a copy of the chain with extra appended.
func (a Auth) With(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(a)+len(extra))
	out = append(out, a...)
	return append(out, extra...)
}

// RegisterRoutes registers the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the local account endpoints under /api/auth.
// register, login and refresh need no session; logout needs a valid
// access token.  limit throttles all of them.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, keyFunc jwt.Keyfunc, limit echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(keyFunc))
}

// RegisterPublic registers the endpoints guests can call without signing
// in.  cache fronts the room list.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, r *handler.RoomHandler, cache echo.MiddlewareFunc) {
	e.POST("/api/bookings/check-availability", b.CheckAvailability)
	e.GET("/api/rooms", r.List, cache)
}
