package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterOwner registers hotel owner endpoints.  All routes require a
// signed-in user whose stored role is hotelOwner.  invalidate clears the
// cached room list after a room is created or its listing flipped.
func RegisterOwner(e *echo.Echo, b *handler.BookingHandler, r *handler.RoomHandler, auth Auth, limit, invalidate echo.MiddlewareFunc) {
	owner := auth.With(middleware.RequireRole(string(model.RoleHotelOwner)))

	// ---- Rooms ----
	e.POST("/api/rooms", r.Create, append(owner, limit, invalidate)...)
	e.GET("/api/rooms/owner", r.OwnerRooms, owner...)
	e.POST("/api/rooms/toggle-availability", r.ToggleAvailability, append(owner, limit, invalidate)...)

	// ---- Dashboard ----
	e.GET("/api/bookings/hotel", b.HotelBookings, owner...)
	e.GET("/api/bookings/hotel/export", b.ExportHotelBookings, owner...)
}
