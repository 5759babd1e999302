package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// memStore is an in-memory Store and RoomStore.  InRoomTx holds a single
// mutex for the whole callback, which is enough to model the row lock.
type memStore struct {
	mu       sync.Mutex
	rooms    map[string]*model.Room
	bookings []model.Booking
	failNext error
}

func newMemStore(rooms ...model.Room) *memStore {
	s := &memStore{rooms: make(map[string]*model.Room)}
	for i := range rooms {
		r := rooms[i]
		s.rooms[r.ID] = &r
	}
	return s
}

func (s *memStore) countOverlapping(roomID string, in, out time.Time) int {
	n := 0
	for _, b := range s.bookings {
		if b.RoomID != roomID || b.Status == model.BookingCancelled {
			continue
		}
		if Overlaps(b.CheckInDate, b.CheckOutDate, in, out) {
			n++
		}
	}
	return n
}

func (s *memStore) CountOverlapping(_ context.Context, roomID string, in, out time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countOverlapping(roomID, in, out), nil
}

func (s *memStore) InRoomTx(ctx context.Context, roomID string, fn func(context.Context, Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.bookings = append(s.bookings, tx.pending...)
	return nil
}

func (s *memStore) detail(b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b}
	if r, ok := s.rooms[b.RoomID]; ok {
		d.Room = model.RoomSummary{ID: r.ID, RoomType: r.RoomType, PricePerNight: r.PricePerNight}
	}
	return d
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, s.detail(b))
		}
	}
	return out, nil
}

func (s *memStore) ListByHotel(_ context.Context, hotelID string) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.bookings {
		if b.HotelID == hotelID {
			out = append(out, s.detail(b))
		}
	}
	return out, nil
}

func (s *memStore) ToggleAvailability(_ context.Context, roomID string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	r.IsAvailable = !r.IsAvailable
	cp := *r
	return &cp, nil
}

type memTx struct {
	s       *memStore
	pending []model.Booking
}

func (t *memTx) CountOverlapping(_ context.Context, roomID string, in, out time.Time) (int, error) {
	return t.s.countOverlapping(roomID, in, out), nil
}

func (t *memTx) GetRoom(_ context.Context, roomID string) (*model.Room, error) {
	r, ok := t.s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) CreateBooking(_ context.Context, b *model.Booking) error {
	if err := t.s.failNext; err != nil {
		t.s.failNext = nil
		return err
	}
	t.pending = append(t.pending, *b)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	ids  []string
	fail error
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, b.ID)
	return p.fail
}

var day0 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time { return day0.AddDate(0, 0, n) }

func testRoom(id string, price float64) model.Room {
	return model.Room{ID: id, HotelID: "h1", RoomType: model.RoomTypeDoubleBed, PricePerNight: price, IsAvailable: true}
}

func TestCreateBookingPricesStay(t *testing.T) {
	tests := []struct {
		name     string
		in, out  time.Time
		price    float64
		expected float64
	}{
		{"one night", dayN(0), dayN(1), 100, 100},
		{"three nights", dayN(0), dayN(3), 100, 300},
		{"partial day rounds up", dayN(0).Add(10 * time.Hour), dayN(1).Add(8 * time.Hour), 120, 120},
		{"short span still bills a night", dayN(0).Add(10 * time.Hour), dayN(0).Add(20 * time.Hour), 80, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testRoom("r1", tt.price))
			e := NewEngine(store, store, nil)
			b, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: tt.in, CheckOut: tt.out, Guests: 2})
			if err != nil {
				t.Fatalf("CreateBooking: %v", err)
			}
			if b.TotalPrice != tt.expected {
				t.Fatalf("TotalPrice = %v, want %v", b.TotalPrice, tt.expected)
			}
		})
	}
}

func TestCreateBookingDefaults(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	e := NewEngine(store, store, nil)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	b, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(2), Guests: 1})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ID == "" {
		t.Fatal("booking id is empty")
	}
	if b.Status != model.BookingPending || b.IsPaid || b.PaymentMethod != model.DefaultPaymentMethod {
		t.Fatalf("unexpected defaults: status=%s paid=%v method=%q", b.Status, b.IsPaid, b.PaymentMethod)
	}
	if b.HotelID != "h1" {
		t.Fatalf("HotelID = %q, want h1", b.HotelID)
	}
	if !b.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v, want %v", b.CreatedAt, fixed)
	}
	if len(store.bookings) != 1 {
		t.Fatalf("stored %d bookings, want 1", len(store.bookings))
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	tests := []struct {
		name    string
		in, out time.Time
		wantErr error
	}{
		{"identical", dayN(2), dayN(5), ErrRoomUnavailable},
		{"inside", dayN(3), dayN(4), ErrRoomUnavailable},
		{"starts on previous check-out", dayN(5), dayN(7), ErrRoomUnavailable},
		{"ends on previous check-in", dayN(0), dayN(2), ErrRoomUnavailable},
		{"strictly after", dayN(6), dayN(8), nil},
		{"strictly before", dayN(0), dayN(1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testRoom("r1", 100))
			e := NewEngine(store, store, nil)
			ctx := context.Background()
			if _, err := e.CreateBooking(ctx, Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(2), CheckOut: dayN(5), Guests: 1}); err != nil {
				t.Fatalf("seed booking: %v", err)
			}
			_, err := e.CreateBooking(ctx, Request{UserID: "u2", RoomID: "r1", CheckIn: tt.in, CheckOut: tt.out, Guests: 1})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBookingIgnoresCancelled(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	store.bookings = append(store.bookings, model.Booking{
		ID: "old", RoomID: "r1", HotelID: "h1", CheckInDate: dayN(0), CheckOutDate: dayN(3), Status: model.BookingCancelled,
	})
	e := NewEngine(store, store, nil)
	if _, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(1), CheckOut: dayN(2), Guests: 1}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
}

func TestCreateBookingOtherRoomUnaffected(t *testing.T) {
	store := newMemStore(testRoom("r1", 100), testRoom("r2", 100))
	e := NewEngine(store, store, nil)
	ctx := context.Background()
	for _, room := range []string{"r1", "r2"} {
		if _, err := e.CreateBooking(ctx, Request{UserID: "u1", RoomID: room, CheckIn: dayN(0), CheckOut: dayN(2), Guests: 1}); err != nil {
			t.Fatalf("book %s: %v", room, err)
		}
	}
}

func TestCreateBookingRoomNotFound(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, store, nil)
	_, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "missing", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestCreateBookingIgnoresListingFlag(t *testing.T) {
	room := testRoom("r1", 100)
	room.IsAvailable = false
	store := newMemStore(room)
	e := NewEngine(store, store, nil)
	if _, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1}); err != nil {
		t.Fatalf("CreateBooking on delisted room: %v", err)
	}
	if store.rooms["r1"].IsAvailable {
		t.Fatal("booking must not change the listing flag")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing user", Request{RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1}, "user"},
		{"missing room", Request{UserID: "u1", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1}, "room"},
		{"reversed dates", Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(2), CheckOut: dayN(1), Guests: 1}, "checkOutDate"},
		{"same instant", Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(1), CheckOut: dayN(1), Guests: 1}, "checkOutDate"},
		{"missing check-in", Request{UserID: "u1", RoomID: "r1", CheckOut: dayN(1), Guests: 1}, "checkInDate"},
		{"no guests", Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(1)}, "guests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testRoom("r1", 100))
			e := NewEngine(store, store, nil)
			_, err := e.CreateBooking(context.Background(), tt.req)
			verr := AsValidationError(err)
			if verr == nil {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields()[tt.field]; !ok {
				t.Fatalf("fields = %v, want key %q", verr.Fields(), tt.field)
			}
			if len(store.bookings) != 0 {
				t.Fatal("invalid request must not be stored")
			}
		})
	}
}

func TestCreateBookingStoreFailureLeavesNothing(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	boom := errors.New("disk full")
	store.failNext = boom
	pub := &recordingPublisher{}
	e := NewEngine(store, store, pub)

	_, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(store.bookings) != 0 || len(pub.ids) != 0 {
		t.Fatalf("bookings=%d published=%d, want 0 and 0", len(store.bookings), len(pub.ids))
	}
}

func TestCreateBookingPublishes(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	pub := &recordingPublisher{fail: errors.New("broker down")}
	e := NewEngine(store, store, pub)

	b, err := e.CreateBooking(context.Background(), Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 1})
	if err != nil {
		t.Fatalf("publish failure must not fail the booking: %v", err)
	}
	if len(pub.ids) != 1 || pub.ids[0] != b.ID {
		t.Fatalf("published %v, want [%s]", pub.ids, b.ID)
	}
}

func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	e := NewEngine(store, store, nil)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.CreateBooking(context.Background(), Request{UserID: "u", RoomID: "r1", CheckIn: dayN(10), CheckOut: dayN(12), Guests: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrRoomUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("successes=%d conflicts=%d, want 1 and %d", successes, conflicts, workers-1)
	}
}

func TestCheckAvailability(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	e := NewEngine(store, store, nil)
	ctx := context.Background()

	ok, err := e.CheckAvailability(ctx, "r1", dayN(0), dayN(2))
	if err != nil || !ok {
		t.Fatalf("empty room: ok=%v err=%v", ok, err)
	}
	if _, err := e.CreateBooking(ctx, Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(2), Guests: 1}); err != nil {
		t.Fatal(err)
	}
	ok, _ = e.CheckAvailability(ctx, "r1", dayN(2), dayN(3))
	if ok {
		t.Fatal("adjacent stay should be reported unavailable")
	}
	ok, _ = e.CheckAvailability(ctx, "r1", dayN(3), dayN(4))
	if !ok {
		t.Fatal("later stay should be available")
	}
	ok, _ = e.CheckAvailability(ctx, "unknown", dayN(0), dayN(2))
	if !ok {
		t.Fatal("unknown room has no bookings and reports available")
	}
}

func TestToggleAvailabilityTwiceRestores(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	e := NewEngine(store, store, nil)
	ctx := context.Background()

	r, err := e.ToggleAvailability(ctx, "r1")
	if err != nil || r.IsAvailable {
		t.Fatalf("first toggle: available=%v err=%v", r != nil && r.IsAvailable, err)
	}
	r, err = e.ToggleAvailability(ctx, "r1")
	if err != nil || !r.IsAvailable {
		t.Fatalf("second toggle: available=%v err=%v", r != nil && r.IsAvailable, err)
	}
	if _, err := e.ToggleAvailability(ctx, "nope"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	store := newMemStore(testRoom("r1", 100))
	e := NewEngine(store, store, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		created := day0.Add(time.Duration(i) * time.Hour)
		e.now = func() time.Time { return created }
		if _, err := e.CreateBooking(ctx, Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(i * 3), CheckOut: dayN(i*3 + 1), Guests: 1}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := e.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("not newest first at %d: %v after %v", i, got[i].CreatedAt, got[i-1].CreatedAt)
		}
	}

	empty, err := e.ListForUser(ctx, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty list = %v, %v; want non-nil empty slice", empty, err)
	}
}

func TestDashboardIncludesUnpaid(t *testing.T) {
	store := newMemStore(testRoom("r1", 100), testRoom("r2", 250))
	e := NewEngine(store, store, nil)
	ctx := context.Background()
	if _, err := e.CreateBooking(ctx, Request{UserID: "u1", RoomID: "r1", CheckIn: dayN(0), CheckOut: dayN(2), Guests: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateBooking(ctx, Request{UserID: "u2", RoomID: "r2", CheckIn: dayN(0), CheckOut: dayN(1), Guests: 2}); err != nil {
		t.Fatal(err)
	}
	d, err := e.Dashboard(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalBookings != 2 || d.TotalRevenue != 450 {
		t.Fatalf("dashboard = %d bookings / %v revenue, want 2 / 450", d.TotalBookings, d.TotalRevenue)
	}

	other, err := e.Dashboard(ctx, "h2")
	if err != nil || other.TotalBookings != 0 || other.TotalRevenue != 0 || other.Bookings == nil {
		t.Fatalf("empty dashboard = %+v, %v", other, err)
	}
}
