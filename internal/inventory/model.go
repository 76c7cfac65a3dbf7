package inventory

import (
	"net/http"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "inventory entry not found")
	ErrInvalidRoomType = apperror.New(http.StatusBadRequest, "invalid room type")
	ErrNegativeCount   = apperror.New(http.StatusBadRequest, "allowed count cannot be negative")
)

// RoomType is the closed set of bookable room categories.
type RoomType string

const (
	RoomTypeStandardSingle    RoomType = "STANDARD_SINGLE"
	RoomTypeStandardDouble    RoomType = "STANDARD_DOUBLE"
	RoomTypeDeluxeDouble      RoomType = "DELUXE_DOUBLE"
	RoomTypeJuniorSuite       RoomType = "JUNIOR_SUITE"
	RoomTypeSuite             RoomType = "SUITE"
	RoomTypePresidentialSuite RoomType = "PRESIDENTIAL_SUITE"
)

// RoomTypes lists every valid room type, in display order.
var RoomTypes = []RoomType{
	RoomTypeStandardSingle,
	RoomTypeStandardDouble,
	RoomTypeDeluxeDouble,
	RoomTypeJuniorSuite,
	RoomTypeSuite,
	RoomTypePresidentialSuite,
}

// ParseRoomType validates a raw string against the closed room type set.
func ParseRoomType(s string) (RoomType, error) {
	for _, rt := range RoomTypes {
		if RoomType(s) == rt {
			return rt, nil
		}
	}
	return "", ErrInvalidRoomType
}

// Entry is the per-hotel, per-room-type inventory ledger row. AllowedCount
// bounds how many units of the type the hotel may hold at once; it is the
// source of truth for "can this room type accept more".
type Entry struct {
	ID           string
	HotelID      string
	RoomType     RoomType
	AllowedCount int
}

// CanAccommodate reports whether the ledger entry has room for `requested`
// more units on top of `materialized` existing ones. Pure; shared by room
// administration (materialized = existing rooms of the type) and the booking
// orchestrator (materialized = active bookings of the type).
func CanAccommodate(entry *Entry, materialized, requested int) bool {
	if entry == nil || requested < 0 || materialized < 0 {
		return false
	}
	return materialized+requested <= entry.AllowedCount
}
