package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo provides CRUD operations for rooms.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "r.id,r.hotel_id,r.room_type,r.price_per_night,r.amenities,r.images,r.is_available,r.created_at,r.updated_at"

// Create inserts a listed room.  Amenities are normalized to a set.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	now := time.Now().UTC()
	room.ID = uuid.NewString()
	room.Amenities = model.NormalizeLabels(room.Amenities)
	if room.Images == nil {
		room.Images = []string{}
	}
	room.IsAvailable = true
	room.CreatedAt, room.UpdatedAt = now, now

	amenities, err := encodeStrings(room.Amenities)
	if err != nil {
		return err
	}
	images, err := encodeStrings(room.Images)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO rooms (id, hotel_id, room_type, price_per_night, amenities, images, is_available, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		room.ID, room.HotelID, room.RoomType, room.PricePerNight, amenities, images, room.IsAvailable, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// GetByID returns a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms r WHERE r.id=? LIMIT 1", id)
	return scanRoom(row)
}

// ListListed returns every room whose listing flag is set, newest first,
// together with its hotel summary.
func (r *RoomRepo) ListListed(ctx context.Context) ([]model.RoomListing, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roomColumns+",h.id,h.name,h.address,h.city FROM rooms r JOIN hotels h ON h.id=r.hotel_id "+
			"WHERE r.is_available=1 ORDER BY r.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoomListing{}
	for rows.Next() {
		var (
			l                 model.RoomListing
			amenities, images []byte
		)
		if err := rows.Scan(&l.ID, &l.HotelID, &l.RoomType, &l.PricePerNight, &amenities, &images, &l.IsAvailable, &l.CreatedAt, &l.UpdatedAt,
			&l.Hotel.ID, &l.Hotel.Name, &l.Hotel.Address, &l.Hotel.City); err != nil {
			return nil, err
		}
		if err := decodeRoomLabels(&l.Room, amenities, images); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListByHotel returns all rooms of a hotel regardless of the listing flag,
// newest first.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID string) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms r WHERE r.hotel_id=? ORDER BY r.created_at DESC", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

// ToggleAvailability flips is_available and returns the updated room.
func (r *RoomRepo) ToggleAvailability(ctx context.Context, id string) (*model.Room, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE rooms SET is_available = NOT is_available, updated_at=? WHERE id=?", time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil, ErrRoomNotFound
	}
	room, err := scanRoom(tx.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms r WHERE r.id=?", id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

func scanRoom(row rowScanner) (*model.Room, error) {
	var (
		room              model.Room
		amenities, images []byte
	)
	err := row.Scan(&room.ID, &room.HotelID, &room.RoomType, &room.PricePerNight, &amenities, &images, &room.IsAvailable, &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeRoomLabels(&room, amenities, images); err != nil {
		return nil, err
	}
	return &room, nil
}

func decodeRoomLabels(room *model.Room, amenities, images []byte) error {
	var err error
	if room.Amenities, err = decodeStrings(amenities); err != nil {
		return err
	}
	room.Images, err = decodeStrings(images)
	return err
}
