package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// memDB backs the in-memory stores below.  One mutex guards all tables.
type memDB struct {
	mu       sync.Mutex
	users    map[string]*model.User
	hotels   map[string]*model.Hotel
	rooms    []*model.Room
	bookings []model.Booking
	tokens   map[string]memToken
}

type memToken struct {
	userID  string
	exp     time.Time
	revoked bool
}

func newMemDB() *memDB {
	return &memDB{
		users:  make(map[string]*model.User),
		hotels: make(map[string]*model.Hotel),
		tokens: make(map[string]memToken),
	}
}

func (db *memDB) room(id string) (*model.Room, bool) {
	for _, r := range db.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (db *memDB) hotelByOwner(ownerID string) (*model.Hotel, bool) {
	for _, h := range db.hotels {
		if h.OwnerID == ownerID {
			return h, true
		}
	}
	return nil, false
}

// seedUser stores a user with the given role and returns it.
func (db *memDB) seedUser(id string, role model.Role) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: id, Username: id, Email: id + "@example.com", Role: role, RecentSearchedCities: []string{}}
	db.users[id] = u
	return u
}

// seedHotel stores a hotel for owner.
func (db *memDB) seedHotel(id, ownerID, city string) *model.Hotel {
	db.mu.Lock()
	defer db.mu.Unlock()
	h := &model.Hotel{ID: id, OwnerID: ownerID, Name: id + " Hotel", City: city}
	db.hotels[id] = h
	return h
}

// seedRoom stores a listed room.
func (db *memDB) seedRoom(id, hotelID string, rt model.RoomType, price float64, created time.Time) *model.Room {
	db.mu.Lock()
	defer db.mu.Unlock()
	r := &model.Room{ID: id, HotelID: hotelID, RoomType: rt, PricePerNight: price, IsAvailable: true,
		Amenities: []string{}, Images: []string{}, CreatedAt: created}
	db.rooms = append(db.rooms, r)
	return r
}

// ----- booking.Store / booking.RoomStore -----

type memBookings struct{ db *memDB }

func (s memBookings) count(roomID string, in, out time.Time) int {
	n := 0
	for _, b := range s.db.bookings {
		if b.RoomID == roomID && b.Status != model.BookingCancelled && booking.Overlaps(b.CheckInDate, b.CheckOutDate, in, out) {
			n++
		}
	}
	return n
}

func (s memBookings) CountOverlapping(_ context.Context, roomID string, in, out time.Time) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.count(roomID, in, out), nil
}

func (s memBookings) InRoomTx(ctx context.Context, _ string, fn func(context.Context, booking.Tx) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(ctx, memTx{s})
}

func (s memBookings) detail(b model.Booking, withUser bool) model.BookingDetail {
	d := model.BookingDetail{Booking: b}
	if r, ok := s.db.room(b.RoomID); ok {
		d.Room = model.RoomSummary{ID: r.ID, RoomType: r.RoomType, PricePerNight: r.PricePerNight, Images: r.Images}
	}
	if h, ok := s.db.hotels[b.HotelID]; ok {
		d.Hotel = h.Summary()
	}
	if u, ok := s.db.users[b.UserID]; withUser && ok {
		d.User = &model.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return d
}

func (s memBookings) ListByUser(_ context.Context, userID string) ([]model.BookingDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.db.bookings {
		if b.UserID == userID {
			out = append(out, s.detail(b, false))
		}
	}
	return out, nil
}

func (s memBookings) ListByHotel(_ context.Context, hotelID string) ([]model.BookingDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.db.bookings {
		if b.HotelID == hotelID {
			out = append(out, s.detail(b, true))
		}
	}
	return out, nil
}

func (s memBookings) ToggleAvailability(_ context.Context, roomID string) (*model.Room, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.room(roomID)
	if !ok {
		return nil, booking.ErrRoomNotFound
	}
	r.IsAvailable = !r.IsAvailable
	cp := *r
	return &cp, nil
}

type memTx struct{ s memBookings }

func (t memTx) CountOverlapping(_ context.Context, roomID string, in, out time.Time) (int, error) {
	return t.s.count(roomID, in, out), nil
}

func (t memTx) GetRoom(_ context.Context, roomID string) (*model.Room, error) {
	r, ok := t.s.db.room(roomID)
	if !ok {
		return nil, booking.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (t memTx) CreateBooking(_ context.Context, b *model.Booking) error {
	t.s.db.bookings = append(t.s.db.bookings, *b)
	return nil
}

// ----- RoomStore -----

type memRooms struct{ db *memDB }

func (s memRooms) Create(_ context.Context, room *model.Room) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	room.ID = uuid.NewString()
	room.Amenities = model.NormalizeLabels(room.Amenities)
	room.IsAvailable = true
	room.CreatedAt = time.Now().UTC()
	cp := *room
	s.db.rooms = append(s.db.rooms, &cp)
	return nil
}

func (s memRooms) GetByID(_ context.Context, id string) (*model.Room, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.room(id)
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

// ListListed returns listed rooms newest first like the SQL query.
func (s memRooms) ListListed(_ context.Context) ([]model.RoomListing, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.RoomListing{}
	for i := len(s.db.rooms) - 1; i >= 0; i-- {
		r := s.db.rooms[i]
		if !r.IsAvailable {
			continue
		}
		l := model.RoomListing{Room: *r}
		if h, ok := s.db.hotels[r.HotelID]; ok {
			l.Hotel = h.Summary()
		}
		out = append(out, l)
	}
	return out, nil
}

func (s memRooms) ListByHotel(_ context.Context, hotelID string) ([]model.Room, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Room{}
	for _, r := range s.db.rooms {
		if r.HotelID == hotelID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ----- HotelStore -----

type memHotels struct{ db *memDB }

func (s memHotels) Register(_ context.Context, h *model.Hotel) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.hotelByOwner(h.OwnerID); ok {
		return repository.ErrHotelExists
	}
	h.ID = uuid.NewString()
	cp := *h
	s.db.hotels[h.ID] = &cp
	if u, ok := s.db.users[h.OwnerID]; ok {
		u.Role = model.RoleHotelOwner
	}
	return nil
}

func (s memHotels) GetByOwner(_ context.Context, ownerID string) (*model.Hotel, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h, ok := s.db.hotelByOwner(ownerID)
	if !ok {
		return nil, repository.ErrHotelNotFound
	}
	cp := *h
	return &cp, nil
}

// ----- AccountStore / ProfileStore / middleware.UserLoader -----

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, username, email, password string, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return nil, repository.ErrEmailExists
		}
	}
	u := &model.User{ID: uuid.NewString(), Username: username, Email: email, PasswordHash: hash,
		Role: model.RoleUser, RecentSearchedCities: []string{}}
	s.db.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) PushRecentCity(_ context.Context, userID, city string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.PushRecentCity(city)
	return u.RecentSearchedCities, nil
}

// ----- TokenStore -----

type memTokens struct{ db *memDB }

func (s memTokens) StoreRefresh(_ context.Context, userID, hash string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tokens[hash] = memToken{userID: userID, exp: exp}
	return nil
}

func (s memTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tokens[hash]
	if !ok || t.revoked || time.Now().After(t.exp) {
		return "", repository.ErrInvalidRefresh
	}
	return t.userID, nil
}

func (s memTokens) RevokeByHash(_ context.Context, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if t, ok := s.db.tokens[hash]; ok {
		t.revoked = true
		s.db.tokens[hash] = t
	}
	return nil
}

func (s memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for h, t := range s.db.tokens {
		if t.userID == userID {
			t.revoked = true
			s.db.tokens[h] = t
		}
	}
	return nil
}
