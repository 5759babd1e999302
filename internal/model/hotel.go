package model

import "time"

// Hotel represents a property registered by a hotel owner.  Each owner
// may register at most one hotel; the `hotels` table enforces this with a
// unique key on owner_id.
//
// Fields:
//
//	ID        – primary key identifier (UUID).
//	OwnerID   – users.id of the owner.
//	Name      – display name.
//	Address   – street address.
//	Contact   – phone or other contact string.
//	City      – city used for destination search.
//	CreatedAt – timestamp when the hotel was registered.
//	UpdatedAt – timestamp of last update.
type Hotel struct {
	ID        string    `json:"id"`        // hotels.id
	OwnerID   string    `json:"ownerId"`   // hotels.owner_id
	Name      string    `json:"name"`      // hotels.name
	Address   string    `json:"address"`   // hotels.address
	Contact   string    `json:"contact"`   // hotels.contact
	City      string    `json:"city"`      // hotels.city
	CreatedAt time.Time `json:"createdAt"` // hotels.created_at
	UpdatedAt time.Time `json:"updatedAt"` // hotels.updated_at
}

// Summary returns the public fields embedded in room and booking listings.
func (h *Hotel) Summary() HotelSummary {
	return HotelSummary{ID: h.ID, Name: h.Name, Address: h.Address, City: h.City}
}

// HotelSummary is the hotel information embedded in room listings.
type HotelSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}
