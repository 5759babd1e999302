package model

import (
	"strings"
	"time"
)

// RoomType is one of the fixed room categories offered by hotels.
type RoomType string

const (
	RoomTypeSingleBed   RoomType = "Single Bed"
	RoomTypeDoubleBed   RoomType = "Double Bed"
	RoomTypeLuxuryRoom  RoomType = "Luxury Room"
	RoomTypeFamilySuite RoomType = "Family Suite"
)

// RoomTypes lists the accepted room types in display order.
var RoomTypes = []RoomType{RoomTypeSingleBed, RoomTypeDoubleBed, RoomTypeLuxuryRoom, RoomTypeFamilySuite}

// Valid reports whether t is one of RoomTypes.
func (t RoomType) Valid() bool {
	for _, rt := range RoomTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Room represents a bookable room of a hotel.  IsAvailable is the
// owner's manual list/delist switch; it is independent of the booking
// calendar, which is derived from the bookings table.
//
// Fields:
//
//	ID            – primary key identifier (UUID).
//	HotelID       – owning hotel.
//	RoomType      – category, one of RoomTypes.
//	PricePerNight – non-negative nightly price, currency agnostic.
//	Amenities     – unordered labels without duplicates.
//	Images        – image URLs, the first one is the primary image.
//	IsAvailable   – whether the room is listed publicly.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Room struct {
	ID            string    `json:"id"`            // rooms.id
	HotelID       string    `json:"hotelId"`       // rooms.hotel_id
	RoomType      RoomType  `json:"roomType"`      // rooms.room_type
	PricePerNight float64   `json:"pricePerNight"` // rooms.price_per_night
	Amenities     []string  `json:"amenities"`     // rooms.amenities (JSON)
	Images        []string  `json:"images"`        // rooms.images (JSON)
	IsAvailable   bool      `json:"isAvailable"`   // rooms.is_available
	CreatedAt     time.Time `json:"createdAt"`     // rooms.created_at
	UpdatedAt     time.Time `json:"updatedAt"`     // rooms.updated_at
}

// PrimaryImage returns the first image URL or "" when the room has none.
func (r *Room) PrimaryImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}

// RoomListing is a room together with the summary of its hotel, the shape
// returned by the public room list and consumed by the filter engine.
type RoomListing struct {
	Room
	Hotel HotelSummary `json:"hotel"`
}

// RoomSummary is the room information embedded in booking listings.
type RoomSummary struct {
	ID            string   `json:"id"`
	RoomType      RoomType `json:"roomType"`
	PricePerNight float64  `json:"pricePerNight"`
	Images        []string `json:"images"`
}

// NormalizeLabels trims labels, drops blanks and removes duplicates while
// keeping the first occurrence.  Used for amenities, which behave as a set.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
