package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/roomfilter"
)

// RoomHandler serves the public room list and the owner's room
// management endpoints.
type RoomHandler struct {
	Rooms  RoomStore
	Hotels HotelStore
	Engine *booking.Engine
}

// NewRoomHandler constructs a RoomHandler and panics if any dependency is
// nil.
func NewRoomHandler(rooms RoomStore, hotels HotelStore, engine *booking.Engine) *RoomHandler {
	if rooms == nil || hotels == nil || engine == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Hotels: hotels, Engine: engine}
}

type createRoomReq struct {
	RoomType      string   `json:"roomType" validate:"required,roomtype"`
	PricePerNight *float64 `json:"pricePerNight" validate:"required,gte=0"`
	Amenities     []string `json:"amenities" validate:"dive,max=100"`
	Images        []string `json:"images" validate:"max=4,dive,url"`
}

type toggleReq struct {
	RoomID string `json:"roomId" validate:"required"`
}

// Create handles POST /api/rooms.  The room belongs to the caller's hotel.
func (h *RoomHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req createRoomReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	hotel, err := h.Hotels.GetByOwner(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	room := &model.Room{
		HotelID:       hotel.ID,
		RoomType:      model.RoomType(req.RoomType),
		PricePerNight: *req.PricePerNight,
		Amenities:     req.Amenities,
		Images:        req.Images,
	}
	if err := h.Rooms.Create(ctx, room); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Room created successfully", "room": room})
}

// List handles GET /api/rooms.  Only listed rooms are returned, newest
// first.  The optional roomType, priceRange, sort and destination query
// parameters are applied with roomfilter; roomType and priceRange may
// repeat.
func (h *RoomHandler) List(c echo.Context) error {
	opts, err := filterOptions(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	rooms, err := h.Rooms.ListListed(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if !opts.IsZero() {
		rooms = roomfilter.Apply(rooms, opts)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "rooms": rooms})
}

func filterOptions(c echo.Context) (roomfilter.Options, error) {
	q := c.QueryParams()
	sort, ok := roomfilter.ParseSortKey(q.Get("sort"))
	if !ok {
		return roomfilter.Options{}, errBadRequest("unknown sort %q", q.Get("sort"))
	}
	return roomfilter.Options{
		RoomTypes:   nonBlank(q["roomType"]),
		PriceRanges: nonBlank(q["priceRange"]),
		Sort:        sort,
		Destination: strings.TrimSpace(q.Get("destination")),
	}, nil
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// OwnerRooms handles GET /api/rooms/owner: every room of the caller's
// hotel, listed or not.
func (h *RoomHandler) OwnerRooms(c echo.Context) error {
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
	rooms, err := h.Rooms.ListByHotel(ctx, hotel.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "rooms": rooms})
}

// ToggleAvailability handles POST /api/rooms/toggle-availability.  Only
// the owner of the room's hotel may flip its listing flag.
func (h *RoomHandler) ToggleAvailability(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req toggleReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return writeError(c, err)
	}
	hotel, err := h.Hotels.GetByOwner(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	if room.HotelID != hotel.ID {
		return writeError(c, repository.ErrForbidden)
	}
	room, err = h.Engine.ToggleAvailability(ctx, room.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Room availability updated", "room": room})
}
