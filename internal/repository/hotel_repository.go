package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelRepo provides access to the hotels table.
type HotelRepo struct{ DB *sql.DB }

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{DB: db} }

const hotelColumns = "id,owner_id,name,address,contact,city,created_at,updated_at"

// Register creates h for its owner and promotes the owner to hotelOwner in
// the same transaction.  It returns ErrHotelExists when the owner already
// has a hotel.
func (r *HotelRepo) Register(ctx context.Context, h *model.Hotel) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM hotels WHERE owner_id=?", h.OwnerID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHotelExists
	}

	now := time.Now().UTC()
	h.ID = uuid.NewString()
	h.Name = strings.TrimSpace(h.Name)
	h.City = strings.TrimSpace(h.City)
	h.CreatedAt, h.UpdatedAt = now, now
	_, err = tx.ExecContext(ctx,
		"INSERT INTO hotels (id, owner_id, name, address, contact, city, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		h.ID, h.OwnerID, h.Name, h.Address, h.Contact, h.City, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		// uq_hotels_owner catches a concurrent registration by the same owner
		if isDuplicate(err) {
			return ErrHotelExists
		}
		return fmt.Errorf("insert hotel: %w", err)
	}

	// fk_hotels_owner guarantees the user row exists at this point
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=? WHERE id=?", model.RoleHotelOwner, now, h.OwnerID); err != nil {
		return fmt.Errorf("promote owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByOwner returns the hotel managed by ownerID.
func (r *HotelRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE owner_id=? LIMIT 1", ownerID)
	return scanHotel(row)
}

func scanHotel(row rowScanner) (*model.Hotel, error) {
	var h model.Hotel
	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.Contact, &h.City, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
