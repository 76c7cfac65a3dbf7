package hotel

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "hotel not found")
	ErrEmptyName = apperror.New(http.StatusBadRequest, "hotel name cannot be empty")
	ErrEmptyCity = apperror.New(http.StatusBadRequest, "hotel city cannot be empty")
)

// Hotel represents a property whose rooms can be booked.
type Hotel struct {
	ID          string
	OwnerID     string
	Name        string
	City        string
	Country     string
	Address     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing hotels.
type Filter struct {
	City     string
	Country  string
	Keyword  string // Search in Name or Description
	Page     int
	PageSize int
}
