package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterGuest registers the endpoints of any signed-in user: booking a
// room, listing their bookings, their profile and registering a hotel.
// Write routes go through limit.
func RegisterGuest(e *echo.Echo, b *handler.BookingHandler, u *handler.UserHandler, h *handler.HotelHandler, auth Auth, limit echo.MiddlewareFunc) {
	e.POST("/api/bookings/book", b.Book, auth.With(limit)...)
	e.GET("/api/bookings/user", b.UserBookings, auth...)

	e.GET("/api/user", u.Profile, auth...)
	e.POST("/api/user/store-recent-search", u.StoreRecentSearch, auth.With(limit)...)

	e.POST("/api/hotels", h.Register, auth.With(limit)...)
}
