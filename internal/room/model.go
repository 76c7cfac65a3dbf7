package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "room not found")
	ErrInvalidPrice      = apperror.New(http.StatusBadRequest, "price per night must be positive")
	ErrInvalidCapacity   = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrInventoryExceeded = apperror.New(http.StatusConflict, "hotel inventory does not allow more rooms of this type")
)

// Room is a bookable unit of a hotel. Prices are integer cents; no floats
// touch money anywhere in the system.
type Room struct {
	ID                 string
	HotelID            string
	RoomType           inventory.RoomType
	PricePerNightCents int64
	Capacity           int
	Description        string
	CreatedAt          time.Time
}

type CreateRequest struct {
	HotelID            string
	RoomType           string
	PricePerNightCents int64
	Capacity           int
	Description        string
}
