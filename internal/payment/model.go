package payment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "payment not found")
)

// Status is the settlement state of a payment record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Payment groups one checkout's bookings under a single charge. Amounts are
// integer cents. StripePaymentIntentID is set once the provider settles.
type Payment struct {
	ID                    string
	AmountCents           int64
	Currency              string
	Status                Status
	StripePaymentIntentID *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
