package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelHandler registers hotels.
type HotelHandler struct {
	Hotels HotelStore
}

func NewHotelHandler(hotels HotelStore) *HotelHandler {
	if hotels == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{Hotels: hotels}
}

type registerHotelReq struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=512"`
	Contact string `json:"contact" validate:"required,max=100"`
	City    string `json:"city" validate:"required,max=100"`
}

// Register handles POST /api/hotels.  The caller becomes a hotel owner; a
// second registration by the same user is rejected with 409.
func (h *HotelHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req registerHotelReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	hotel := &model.Hotel{
		OwnerID: uid,
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Contact: strings.TrimSpace(req.Contact),
		City:    strings.TrimSpace(req.City),
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Hotels.Register(ctx, hotel); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Hotel registered successfully", "hotel": hotel})
}
