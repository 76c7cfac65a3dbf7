package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound          = apperror.New(http.StatusNotFound, "room not found")
	ErrForbidden             = apperror.New(http.StatusForbidden, "booking does not belong to this user")
	ErrInvalidDateRange      = apperror.New(http.StatusBadRequest, "check-out must be after check-in")
	ErrZeroNightStay         = apperror.New(http.StatusBadRequest, "stay must cover at least one night")
	ErrCapacityExceeded      = apperror.New(http.StatusBadRequest, "number of guests exceeds room capacity")
	ErrPriceComputation      = apperror.New(http.StatusBadRequest, "could not compute a valid total price")
	ErrRoomHotelMismatch     = apperror.New(http.StatusConflict, "room does not belong to the given hotel")
	ErrInsufficientInventory = apperror.New(http.StatusConflict, "not enough rooms of this type available")
	ErrDateConflict          = apperror.New(http.StatusConflict, "room is already booked for these dates")

	ErrInvalidStateForCancellation = apperror.New(http.StatusConflict, "booking can no longer be cancelled")
	ErrInvalidStateForUpdate       = apperror.New(http.StatusConflict, "booking can no longer be modified")
	ErrCheckoutUnavailable         = apperror.New(http.StatusConflict, "payment is not awaiting checkout")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// CanCancel reports whether a guest may still cancel from this state.
func (s Status) CanCancel() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is one room reservation for a date range. Several bookings created
// in the same checkout share a PaymentID. Money is integer cents.
type Booking struct {
	ID                    string
	UserID                string
	HotelID               string
	RoomID                string
	PaymentID             string
	Status                Status
	CheckInDate           time.Time
	CheckOutDate          time.Time
	NumberOfGuests        int
	TotalPriceCents       int64
	ConfirmationEmailSent bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type CreateRequest struct {
	HotelID        string
	RoomID         string
	CheckInDate    time.Time
	CheckOutDate   time.Time
	NumberOfGuests int
	NumberOfRooms  int
}

// CreateResult reports what the orchestrator persisted.
type CreateResult struct {
	BookingIDs      []string
	PaymentID       string
	TotalPriceCents int64
}

// UpdateRequest patches a booking; nil fields are left unchanged.
type UpdateRequest struct {
	CheckInDate    *time.Time
	CheckOutDate   *time.Time
	NumberOfGuests *int
}

type Filter struct {
	Status   string
	Page     int
	PageSize int
}
