package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// fakeStore backs both the booking and payment repositories. Every call
// takes the lock, so each repository operation is atomic like a real
// database statement.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	bookings  map[string]*Booking
	payments  map[string]*payment.Payment
	roomTypes map[string]inventory.RoomType
	failNext  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:  make(map[string]*Booking),
		payments:  make(map[string]*payment.Payment),
		roomTypes: make(map[string]inventory.RoomType),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) CreateSet(_ context.Context, pay *payment.Payment, bookings []*Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	pay.ID = f.nextID("pay")
	pay.CreatedAt = time.Now()
	pay.UpdatedAt = pay.CreatedAt
	stored := *pay
	f.payments[pay.ID] = &stored
	for _, b := range bookings {
		b.ID = f.nextID("bkg")
		b.PaymentID = pay.ID
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
		cp := *b
		f.bookings[b.ID] = &cp
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, filter Filter) ([]*Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListByPaymentID(_ context.Context, paymentID string) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, b := range f.bookings {
		if b.PaymentID == paymentID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CountActiveByRoomType(_ context.Context, hotelID string, rt inventory.RoomType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, b := range f.bookings {
		if b.HotelID == hotelID && f.roomTypes[b.RoomID] == rt &&
			(b.Status == StatusPending || b.Status == StatusConfirmed) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HasOverlap(_ context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.RoomID != roomID || b.ID == excludeID {
			continue
		}
		if b.Status == StatusCancelled || b.Status == StatusRejected {
			continue
		}
		if b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateDetails(_ context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.CheckInDate = b.CheckInDate
	stored.CheckOutDate = b.CheckOutDate
	stored.NumberOfGuests = b.NumberOfGuests
	stored.TotalPriceCents = b.TotalPriceCents
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) UpdateStatusIf(_ context.Context, id string, from, to Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeStore) ExpireStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.Status == StatusPending && b.CreatedAt.Before(cutoff) {
			b.Status = StatusCancelled
			n++
		}
	}
	return n, nil
}

// payment.Repository
func (f *fakeStore) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakePaymentRepo struct{ store *fakeStore }

func (f fakePaymentRepo) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	return f.store.GetPayment(ctx, id)
}

type fakeRoomService struct {
	room.Service
	rooms map[string]*room.Room
}

func (f *fakeRoomService) GetByID(_ context.Context, id string) (*room.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return r, nil
}

type fakeHotelService struct {
	hotel.Service
	hotels map[string]*hotel.Hotel
}

func (f *fakeHotelService) GetByID(_ context.Context, id string) (*hotel.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return nil, hotel.ErrNotFound
	}
	return h, nil
}

type fakeInventoryService struct {
	inventory.Service
	entries map[inventory.RoomType]*inventory.Entry
}

func (f *fakeInventoryService) GetByHotelAndType(_ context.Context, _ string, rt inventory.RoomType) (*inventory.Entry, error) {
	e, ok := f.entries[rt]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return e, nil
}

type fakeGateway struct {
	mu     sync.Mutex
	params []payment.CheckoutParams
	err    error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, p payment.CheckoutParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.params = append(f.params, p)
	return "https://checkout.test/session", nil
}

func (f *fakeGateway) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented")
}

type fixture struct {
	store   *fakeStore
	gateway *fakeGateway
	service Service
}

const (
	testUser  = "user-1"
	testHotel = "hotel-1"
	testRoom  = "room-1"
)

func newFixture(allowed int) *fixture {
	store := newFakeStore()
	store.roomTypes[testRoom] = inventory.RoomTypeSuite

	rooms := &fakeRoomService{rooms: map[string]*room.Room{
		testRoom: {
			ID:                 testRoom,
			HotelID:            testHotel,
			RoomType:           inventory.RoomTypeSuite,
			PricePerNightCents: 10000,
			Capacity:           2,
		},
	}}
	hotels := &fakeHotelService{hotels: map[string]*hotel.Hotel{
		testHotel: {ID: testHotel, Name: "Seaside Resort", City: "Lisbon"},
	}}
	inv := &fakeInventoryService{entries: map[inventory.RoomType]*inventory.Entry{
		inventory.RoomTypeSuite: {
			HotelID:      testHotel,
			RoomType:     inventory.RoomTypeSuite,
			AllowedCount: allowed,
		},
	}}
	gateway := &fakeGateway{}

	return &fixture{
		store:   store,
		gateway: gateway,
		service: NewService(store, fakePaymentRepo{store}, rooms, hotels, inv, gateway),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validRequest() CreateRequest {
	return CreateRequest{
		HotelID:        testHotel,
		RoomID:         testRoom,
		CheckInDate:    date(2024, time.June, 1),
		CheckOutDate:   date(2024, time.June, 4),
		NumberOfGuests: 2,
		NumberOfRooms:  1,
	}
}

func TestCreateBookingSet(t *testing.T) {
	ctx := context.Background()

	t.Run("three nights at 10000 cents creates pending booking and payment", func(t *testing.T) {
		fx := newFixture(5)

		result, err := fx.service.Create(ctx, testUser, validRequest())
		require.NoError(t, err)
		require.Len(t, result.BookingIDs, 1)
		assert.EqualValues(t, 30000, result.TotalPriceCents)

		b := fx.store.bookings[result.BookingIDs[0]]
		require.NotNil(t, b)
		assert.Equal(t, StatusPending, b.Status)
		assert.EqualValues(t, 30000, b.TotalPriceCents)
		assert.Equal(t, result.PaymentID, b.PaymentID)

		p := fx.store.payments[result.PaymentID]
		require.NotNil(t, p)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.EqualValues(t, 30000, p.AmountCents)
	})

	t.Run("multiple rooms share one payment covering the sum", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.NumberOfRooms = 3

		result, err := fx.service.Create(ctx, testUser, req)
		require.NoError(t, err)
		require.Len(t, result.BookingIDs, 3)
		assert.EqualValues(t, 90000, result.TotalPriceCents)

		for _, id := range result.BookingIDs {
			b := fx.store.bookings[id]
			assert.Equal(t, result.PaymentID, b.PaymentID)
			assert.EqualValues(t, 30000, b.TotalPriceCents)
		}
		assert.EqualValues(t, 90000, fx.store.payments[result.PaymentID].AmountCents)
	})

	t.Run("guests over capacity rejected before anything persists", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.NumberOfGuests = 5

		_, err := fx.service.Create(ctx, testUser, req)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Empty(t, fx.store.bookings)
		assert.Empty(t, fx.store.payments)
	})

	t.Run("same-day check-in and check-out rejected", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.CheckOutDate = req.CheckInDate

		_, err := fx.service.Create(ctx, testUser, req)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("check-out before check-in rejected", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.CheckOutDate = req.CheckInDate.AddDate(0, 0, -1)

		_, err := fx.service.Create(ctx, testUser, req)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("unknown room", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.RoomID = "missing"

		_, err := fx.service.Create(ctx, testUser, req)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("room belonging to another hotel", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.HotelID = "other-hotel"

		_, err := fx.service.Create(ctx, testUser, req)
		assert.ErrorIs(t, err, ErrRoomHotelMismatch)
	})

	t.Run("full inventory turns the request away", func(t *testing.T) {
		fx := newFixture(2)

		for i := 0; i < 2; i++ {
			_, err := fx.service.Create(ctx, testUser, validRequest())
			require.NoError(t, err)
		}

		_, err := fx.service.Create(ctx, testUser, validRequest())
		assert.ErrorIs(t, err, ErrInsufficientInventory)
		assert.Len(t, fx.store.bookings, 2)
	})

	t.Run("missing inventory entry means no availability", func(t *testing.T) {
		fx := newFixture(5)

		// Rebuild with an empty inventory ledger.
		empty := &fakeInventoryService{entries: map[inventory.RoomType]*inventory.Entry{}}
		svc := NewService(fx.store, fakePaymentRepo{fx.store},
			&fakeRoomService{rooms: map[string]*room.Room{
				testRoom: {ID: testRoom, HotelID: testHotel, RoomType: inventory.RoomTypeSuite, PricePerNightCents: 10000, Capacity: 2},
			}},
			&fakeHotelService{hotels: map[string]*hotel.Hotel{testHotel: {ID: testHotel}}},
			empty, fx.gateway)

		_, err := svc.Create(ctx, testUser, validRequest())
		assert.ErrorIs(t, err, ErrInsufficientInventory)
	})

	t.Run("storage failure leaves nothing behind", func(t *testing.T) {
		fx := newFixture(5)
		fx.store.failNext = errors.New("connection reset")

		_, err := fx.service.Create(ctx, testUser, validRequest())
		require.Error(t, err)
		assert.Empty(t, fx.store.bookings)
		assert.Empty(t, fx.store.payments)
	})

	t.Run("price overflow rejected", func(t *testing.T) {
		fx := newFixture(5)
		svc := NewService(fx.store, fakePaymentRepo{fx.store},
			&fakeRoomService{rooms: map[string]*room.Room{
				testRoom: {ID: testRoom, HotelID: testHotel, RoomType: inventory.RoomTypeSuite, PricePerNightCents: 1 << 62, Capacity: 2},
			}},
			&fakeHotelService{hotels: map[string]*hotel.Hotel{testHotel: {ID: testHotel}}},
			&fakeInventoryService{entries: map[inventory.RoomType]*inventory.Entry{
				inventory.RoomTypeSuite: {AllowedCount: 5},
			}}, fx.gateway)

		_, err := svc.Create(ctx, testUser, validRequest())
		assert.ErrorIs(t, err, ErrPriceComputation)
	})

	t.Run("distinct room types do not contend under concurrency", func(t *testing.T) {
		fx := newFixture(100)

		var wg sync.WaitGroup
		errs := make([]error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = fx.service.Create(ctx, testUser, validRequest())
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Len(t, fx.store.bookings, 20)
		assert.Len(t, fx.store.payments, 20)
		// Every booking carries the same per-room price regardless of ordering.
		for _, b := range fx.store.bookings {
			assert.EqualValues(t, 30000, b.TotalPriceCents)
		}
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, string) {
		fx := newFixture(5)
		result, err := fx.service.Create(ctx, testUser, validRequest())
		require.NoError(t, err)
		return fx, result.BookingIDs[0]
	}

	t.Run("owner cancels pending booking", func(t *testing.T) {
		fx, id := setup(t)
		require.NoError(t, fx.service.Cancel(ctx, id, testUser))
		assert.Equal(t, StatusCancelled, fx.store.bookings[id].Status)
	})

	t.Run("owner cancels confirmed booking", func(t *testing.T) {
		fx, id := setup(t)
		fx.store.bookings[id].Status = StatusConfirmed
		require.NoError(t, fx.service.Cancel(ctx, id, testUser))
		assert.Equal(t, StatusCancelled, fx.store.bookings[id].Status)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fx, id := setup(t)
		err := fx.service.Cancel(ctx, id, "someone-else")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, StatusPending, fx.store.bookings[id].Status)
	})

	t.Run("terminal states refuse cancellation", func(t *testing.T) {
		for _, s := range []Status{StatusCancelled, StatusCompleted, StatusRejected} {
			fx, id := setup(t)
			fx.store.bookings[id].Status = s
			err := fx.service.Cancel(ctx, id, testUser)
			assert.ErrorIs(t, err, ErrInvalidStateForCancellation, "status %s", s)
		}
	})

	t.Run("concurrent settlement wins over cancel", func(t *testing.T) {
		fx, id := setup(t)
		// Simulate settlement flipping the row between the read and the
		// conditional update.
		fx.store.bookings[id].Status = StatusConfirmed
		b, err := fx.store.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, StatusConfirmed, b.Status)

		fx.store.bookings[id].Status = StatusRejected
		err = fx.service.Cancel(ctx, id, testUser)
		assert.ErrorIs(t, err, ErrInvalidStateForCancellation)
		assert.Equal(t, StatusRejected, fx.store.bookings[id].Status)
	})
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, string) {
		fx := newFixture(5)
		result, err := fx.service.Create(ctx, testUser, validRequest())
		require.NoError(t, err)
		return fx, result.BookingIDs[0]
	}

	t.Run("date change recomputes price", func(t *testing.T) {
		fx, id := setup(t)
		newOut := date(2024, time.June, 6)

		updated, err := fx.service.Update(ctx, id, testUser, UpdateRequest{CheckOutDate: &newOut})
		require.NoError(t, err)
		assert.EqualValues(t, 50000, updated.TotalPriceCents)
		assert.EqualValues(t, 50000, fx.store.bookings[id].TotalPriceCents)
	})

	t.Run("overlapping dates rejected", func(t *testing.T) {
		fx, id := setup(t)

		// A second booking in the same room later in the month.
		req := validRequest()
		req.CheckInDate = date(2024, time.June, 10)
		req.CheckOutDate = date(2024, time.June, 12)
		_, err := fx.service.Create(ctx, testUser, req)
		require.NoError(t, err)

		newIn := date(2024, time.June, 9)
		newOut := date(2024, time.June, 11)
		_, err = fx.service.Update(ctx, id, testUser, UpdateRequest{CheckInDate: &newIn, CheckOutDate: &newOut})
		assert.ErrorIs(t, err, ErrDateConflict)
	})

	t.Run("guest change over capacity rejected", func(t *testing.T) {
		fx, id := setup(t)
		guests := 9
		_, err := fx.service.Update(ctx, id, testUser, UpdateRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("terminal booking cannot change", func(t *testing.T) {
		fx, id := setup(t)
		fx.store.bookings[id].Status = StatusRejected
		guests := 1
		_, err := fx.service.Update(ctx, id, testUser, UpdateRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrInvalidStateForUpdate)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fx, id := setup(t)
		guests := 1
		_, err := fx.service.Update(ctx, id, "intruder", UpdateRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestStartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("builds session from stored amount and booking ids", func(t *testing.T) {
		fx := newFixture(5)
		req := validRequest()
		req.NumberOfRooms = 2
		result, err := fx.service.Create(ctx, testUser, req)
		require.NoError(t, err)

		url, err := fx.service.StartCheckout(ctx, result.PaymentID, testUser)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.test/session", url)

		require.Len(t, fx.gateway.params, 1)
		p := fx.gateway.params[0]
		assert.EqualValues(t, 60000, p.AmountCents)
		assert.Equal(t, "usd", p.Currency)
		assert.Equal(t, "Seaside Resort", p.HotelName)
		assert.ElementsMatch(t, result.BookingIDs, p.BookingIDs)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fx := newFixture(5)
		result, err := fx.service.Create(ctx, testUser, validRequest())
		require.NoError(t, err)

		_, err = fx.service.StartCheckout(ctx, result.PaymentID, "intruder")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, fx.gateway.params)
	})

	t.Run("settled payment cannot re-enter checkout", func(t *testing.T) {
		fx := newFixture(5)
		result, err := fx.service.Create(ctx, testUser, validRequest())
		require.NoError(t, err)
		fx.store.payments[result.PaymentID].Status = payment.StatusSucceeded

		_, err = fx.service.StartCheckout(ctx, result.PaymentID, testUser)
		assert.ErrorIs(t, err, ErrCheckoutUnavailable)
	})

	t.Run("unknown payment", func(t *testing.T) {
		fx := newFixture(5)
		_, err := fx.service.StartCheckout(ctx, "missing", testUser)
		assert.ErrorIs(t, err, payment.ErrNotFound)
	})
}

func TestExpireStalePending(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(10)

	stale, err := fx.service.Create(ctx, testUser, validRequest())
	require.NoError(t, err)
	fx.store.bookings[stale.BookingIDs[0]].CreatedAt = time.Now().Add(-2 * time.Hour)

	fresh, err := fx.service.Create(ctx, testUser, validRequest())
	require.NoError(t, err)

	confirmed, err := fx.service.Create(ctx, testUser, validRequest())
	require.NoError(t, err)
	fx.store.bookings[confirmed.BookingIDs[0]].Status = StatusConfirmed
	fx.store.bookings[confirmed.BookingIDs[0]].CreatedAt = time.Now().Add(-2 * time.Hour)

	n, err := fx.service.ExpireStalePending(ctx, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, StatusCancelled, fx.store.bookings[stale.BookingIDs[0]].Status)
	assert.Equal(t, StatusPending, fx.store.bookings[fresh.BookingIDs[0]].Status)
	assert.Equal(t, StatusConfirmed, fx.store.bookings[confirmed.BookingIDs[0]].Status)
}

func TestNightsBetween(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		out  time.Time
		want int
	}{
		{"three whole days", date(2024, time.June, 1), date(2024, time.June, 4), 3},
		{"single night", date(2024, time.June, 1), date(2024, time.June, 2), 1},
		{"partial day rounds up", date(2024, time.June, 1), date(2024, time.June, 2).Add(6 * time.Hour), 2},
		{"same instant", date(2024, time.June, 1), date(2024, time.June, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nightsBetween(tt.in, tt.out))
		})
	}
}
