package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

const defaultCurrency = "usd"

type Service interface {
	// Create validates a booking request and atomically persists one
	// payment plus one booking row per requested room, all PENDING.
	Create(ctx context.Context, userID string, req CreateRequest) (*CreateResult, error)
	GetByID(ctx context.Context, id, userID string) (*Booking, error)
	ListByUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int64, error)
	Cancel(ctx context.Context, id, userID string) error
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*Booking, error)
	// StartCheckout builds a hosted checkout session for a pending payment
	// and returns the redirect URL. The charged amount always comes from
	// the stored payment record.
	StartCheckout(ctx context.Context, paymentID, userID string) (string, error)
	// ExpireStalePending cancels PENDING bookings created before now-olderThan.
	ExpireStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}

type service struct {
	repo             Repository
	paymentRepo      payment.Repository
	roomService      room.Service
	hotelService     hotel.Service
	inventoryService inventory.Service
	gateway          payment.Gateway
}

func NewService(
	repo Repository,
	paymentRepo payment.Repository,
	roomService room.Service,
	hotelService hotel.Service,
	inventoryService inventory.Service,
	gateway payment.Gateway,
) Service {
	return &service{
		repo:             repo,
		paymentRepo:      paymentRepo,
		roomService:      roomService,
		hotelService:     hotelService,
		inventoryService: inventoryService,
		gateway:          gateway,
	}
}

// nightsBetween is the whole-day difference, rounding partial days up.
func nightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		nights++
	}
	return nights
}

// mulCents multiplies with overflow detection; money must never wrap.
func mulCents(a int64, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (*CreateResult, error) {
	if req.NumberOfRooms < 1 {
		req.NumberOfRooms = 1
	}

	if req.CheckInDate.IsZero() || req.CheckOutDate.IsZero() || !req.CheckOutDate.After(req.CheckInDate) {
		return nil, ErrInvalidDateRange
	}

	rm, err := s.roomService.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if rm.HotelID != req.HotelID {
		return nil, ErrRoomHotelMismatch
	}

	if req.NumberOfGuests < 1 || req.NumberOfGuests > rm.Capacity {
		return nil, ErrCapacityExceeded
	}

	nights := nightsBetween(req.CheckInDate, req.CheckOutDate)
	if nights <= 0 {
		return nil, ErrZeroNightStay
	}

	perBooking, ok := mulCents(rm.PricePerNightCents, int64(nights))
	if !ok || perBooking <= 0 {
		return nil, ErrPriceComputation
	}
	total, ok := mulCents(perBooking, int64(req.NumberOfRooms))
	if !ok || total <= 0 {
		return nil, ErrPriceComputation
	}

	entry, err := s.inventoryService.GetByHotelAndType(ctx, req.HotelID, rm.RoomType)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return nil, ErrInsufficientInventory
		}
		return nil, err
	}
	active, err := s.repo.CountActiveByRoomType(ctx, req.HotelID, rm.RoomType)
	if err != nil {
		return nil, err
	}
	if !inventory.CanAccommodate(entry, active, req.NumberOfRooms) {
		return nil, ErrInsufficientInventory
	}

	pay := &payment.Payment{
		AmountCents: total,
		Currency:    defaultCurrency,
		Status:      payment.StatusPending,
	}
	bookings := make([]*Booking, req.NumberOfRooms)
	for i := range bookings {
		bookings[i] = &Booking{
			UserID:          userID,
			HotelID:         req.HotelID,
			RoomID:          rm.ID,
			Status:          StatusPending,
			CheckInDate:     req.CheckInDate,
			CheckOutDate:    req.CheckOutDate,
			NumberOfGuests:  req.NumberOfGuests,
			TotalPriceCents: perBooking,
		}
	}

	if err := s.repo.CreateSet(ctx, pay, bookings); err != nil {
		return nil, err
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return &CreateResult{
		BookingIDs:      ids,
		PaymentID:       pay.ID,
		TotalPriceCents: total,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id, userID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *service) ListByUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int64, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

func (s *service) Cancel(ctx context.Context, id, userID string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrForbidden
	}
	if !b.Status.CanCancel() {
		return ErrInvalidStateForCancellation
	}

	// Conditional on the observed status so a racing settlement wins.
	updated, err := s.repo.UpdateStatusIf(ctx, id, b.Status, StatusCancelled)
	if err != nil {
		return err
	}
	if !updated {
		return ErrInvalidStateForCancellation
	}
	return nil
}

func (s *service) Update(ctx context.Context, id, userID string, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status.IsTerminal() {
		return nil, ErrInvalidStateForUpdate
	}

	rm, err := s.roomService.GetByID(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}

	if req.NumberOfGuests != nil {
		if *req.NumberOfGuests < 1 || *req.NumberOfGuests > rm.Capacity {
			return nil, ErrCapacityExceeded
		}
		b.NumberOfGuests = *req.NumberOfGuests
	}

	if req.CheckInDate != nil || req.CheckOutDate != nil {
		checkIn := b.CheckInDate
		checkOut := b.CheckOutDate
		if req.CheckInDate != nil {
			checkIn = *req.CheckInDate
		}
		if req.CheckOutDate != nil {
			checkOut = *req.CheckOutDate
		}
		if !checkOut.After(checkIn) {
			return nil, ErrInvalidDateRange
		}
		nights := nightsBetween(checkIn, checkOut)
		if nights <= 0 {
			return nil, ErrZeroNightStay
		}

		conflict, err := s.repo.HasOverlap(ctx, b.RoomID, checkIn, checkOut, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrDateConflict
		}

		total, ok := mulCents(rm.PricePerNightCents, int64(nights))
		if !ok || total <= 0 {
			return nil, ErrPriceComputation
		}

		b.CheckInDate = checkIn
		b.CheckOutDate = checkOut
		b.TotalPriceCents = total
	}

	if err := s.repo.UpdateDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) StartCheckout(ctx context.Context, paymentID, userID string) (string, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if pay.Status != payment.StatusPending {
		return "", ErrCheckoutUnavailable
	}

	bookings, err := s.repo.ListByPaymentID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return "", ErrNotFound
	}
	for _, b := range bookings {
		if b.UserID != userID {
			return "", ErrForbidden
		}
	}

	ht, err := s.hotelService.GetByID(ctx, bookings[0].HotelID)
	if err != nil {
		return "", err
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		AmountCents: pay.AmountCents,
		Currency:    pay.Currency,
		HotelName:   ht.Name,
		Description: fmt.Sprintf("Booking(s): %s", strings.Join(ids, ", ")),
		BookingIDs:  ids,
	})
	if err != nil {
		return "", fmt.Errorf("start checkout failed: %w", err)
	}
	return url, nil
}

func (s *service) ExpireStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	expired, err := s.repo.ExpireStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		zap.L().Info("expired stale pending bookings",
			zap.Int64("count", expired),
			zap.Time("cutoff", cutoff))
	}
	return expired, nil
}
