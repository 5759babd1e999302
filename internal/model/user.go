package model

import (
	"strings"
	"time"
)

// Role is the coarse permission level of a user.  New accounts start as
// RoleUser and are promoted to RoleHotelOwner when they register a hotel.
type Role string

const (
	RoleUser       Role = "user"
	RoleHotelOwner Role = "hotelOwner"
)

// MaxRecentSearchedCities bounds User.RecentSearchedCities.
const MaxRecentSearchedCities = 3

// User represents an application user record as stored in the
// `users` table.  The ID is shared with the identity provider so
// tokens issued elsewhere resolve to the same row.
//
// Fields:
//
//	ID                   – identity subject (UUID for locally registered users).
//	Username             – display name.
//	Email                – unique email address.
//	Image                – avatar URL (may be empty).
//	PasswordHash         – bcrypt hash, empty for externally managed accounts.
//	Role                 – user or hotelOwner.
//	RecentSearchedCities – last searched destinations, oldest first.
//	CreatedAt            – timestamp of creation.
//	UpdatedAt            – timestamp of last update.
type User struct {
	ID                   string    `json:"id"`                   // users.id
	Username             string    `json:"username"`             // users.username
	Email                string    `json:"email"`                // users.email
	Image                string    `json:"image"`                // users.image
	PasswordHash         string    `json:"-"`                    // users.password_hash
	Role                 Role      `json:"role"`                 // users.role
	RecentSearchedCities []string  `json:"recentSearchedCities"` // users.recent_searched_cities (JSON)
	CreatedAt            time.Time `json:"createdAt"`            // users.created_at
	UpdatedAt            time.Time `json:"updatedAt"`            // users.updated_at
}

// PushRecentCity records city as the most recent search, evicting the
// oldest entries once the list exceeds MaxRecentSearchedCities.
func (u *User) PushRecentCity(city string) {
	u.RecentSearchedCities = PushRecentCity(u.RecentSearchedCities, city)
}

// PushRecentCity appends city to cities and drops entries from the front
// until at most MaxRecentSearchedCities remain.  The input slice is not
// modified.  Blank cities are ignored.
func PushRecentCity(cities []string, city string) []string {
	city = strings.TrimSpace(city)
	out := make([]string, 0, MaxRecentSearchedCities+1)
	out = append(out, cities...)
	if city == "" {
		return out
	}
	out = append(out, city)
	if n := len(out) - MaxRecentSearchedCities; n > 0 {
		out = out[n:]
	}
	return out
}

// UserSummary is the subset of a user exposed on an owner's booking list.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
