package notification

import (
	"context"
	"time"
)

// BookingSummary carries everything the confirmation email mentions about
// one booking.
type BookingSummary struct {
	BookingID       string
	HotelName       string
	HotelCity       string
	HotelAddress    string
	CheckIn         time.Time
	CheckOut        time.Time
	TotalPriceCents int64
	Currency        string
}

// Notifier delivers booking confirmations. Implementations must be safe for
// concurrent use.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, toEmail, toName string, bookings []BookingSummary) error
}

// noopNotifier is used when no mail transport is configured.
type noopNotifier struct{}

func (noopNotifier) SendBookingConfirmation(context.Context, string, string, []BookingSummary) error {
	return nil
}

// NewNoopNotifier returns a Notifier that silently drops every message.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}
