package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the caller's profile.
type UserHandler struct {
	Profiles ProfileStore
}

func NewUserHandler(profiles ProfileStore) *UserHandler {
	if profiles == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Profiles: profiles}
}

type recentSearchReq struct {
	City string `json:"recentSearchedCities" validate:"required,max=100"`
}

// Profile handles GET /api/user.
func (h *UserHandler) Profile(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":              true,
		"role":                 u.Role,
		"recentSearchedCities": u.RecentSearchedCities,
	})
}

// StoreRecentSearch handles POST /api/user/store-recent-search.  The
// newest three cities are kept.
func (h *UserHandler) StoreRecentSearch(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req recentSearchReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	cities, err := h.Profiles.PushRecentCity(ctx, u.ID, req.City)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "City added", "recentSearchedCities": cities})
}
