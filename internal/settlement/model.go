package settlement

import (
	"net/http"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	// ErrCorrelationDataInvalid flags webhook payloads whose booking id
	// metadata is missing or malformed. Callers log and drop; it never
	// signals failure back to the payment provider.
	ErrCorrelationDataInvalid = apperror.New(http.StatusBadRequest, "invalid booking correlation metadata")
)

// Outcome is one settlement decision extracted from a provider event.
type Outcome struct {
	BookingIDs    []string
	ProviderTxnID string
}

// SettleResult reports how many rows each conditional update touched. Zero
// counts mean the event was a duplicate or arrived after a state change.
type SettleResult struct {
	BookingsUpdated int64
	PaymentsUpdated int64
}
