package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/report"
)

// BookingHandler serves availability checks, booking creation and the
// booking lists of guests and hotel owners.
type BookingHandler struct {
	Engine *booking.Engine
	Hotels HotelStore
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(engine *booking.Engine, hotels HotelStore) *BookingHandler {
	if engine == nil || hotels == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Hotels: hotels}
}

type availabilityReq struct {
	Room         string `json:"room" validate:"required"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
}

type bookReq struct {
	Room         string `json:"room" validate:"required"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
	Guests       int    `json:"guests" validate:"required,min=1"`
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := parseStayDate("checkInDate", checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := parseStayDate("checkOutDate", checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// CheckAvailability handles POST /api/bookings/check-availability.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	in, out, err := parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return writeError(c, err)
	}
	if !out.After(in) {
		return writeError(c, errBadRequest("checkOutDate must be after checkInDate"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	ok, err := h.Engine.CheckAvailability(ctx, req.Room, in, out)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "isAvailable": ok})
}

// Book handles POST /api/bookings/book for the authenticated user.
func (h *BookingHandler) Book(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req bookReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	in, out, err := parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	b, err := h.Engine.CreateBooking(ctx, booking.Request{
		UserID:   uid,
		RoomID:   req.Room,
		CheckIn:  in,
		CheckOut: out,
		Guests:   req.Guests,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Booking created successfully", "booking": b})
}

// UserBookings handles GET /api/bookings/user.
func (h *BookingHandler) UserBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Engine.ListForUser(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": items})
}

// HotelBookings handles GET /api/bookings/hotel for hotel owners.
func (h *BookingHandler) HotelBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hotel, err := h.Hotels.GetByOwner(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	d, err := h.Engine.Dashboard(ctx, hotel.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "dashboardData": d})
}

// ExportHotelBookings handles GET /api/bookings/hotel/export and returns
// the owner's dashboard as an xlsx attachment.
func (h *BookingHandler) ExportHotelBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hotel, err := h.Hotels.GetByOwner(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	d, err := h.Engine.Dashboard(ctx, hotel.ID)
	if err != nil {
		return writeError(c, err)
	}
	buf, err := report.Workbook(hotel.Name, d)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="bookings-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
