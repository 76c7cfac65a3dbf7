package settlement

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
)

// metadataKeyBookingIDs matches the key the checkout gateway stamps on
// sessions and payment intents.
const metadataKeyBookingIDs = "bookingIds"

// ParseBookingIDs extracts the JSON-encoded booking id list from provider
// metadata. Anything other than a non-empty array of non-empty strings is
// ErrCorrelationDataInvalid.
func ParseBookingIDs(metadata map[string]string) ([]string, error) {
	raw, ok := metadata[metadataKeyBookingIDs]
	if !ok || raw == "" {
		return nil, ErrCorrelationDataInvalid
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, ErrCorrelationDataInvalid
	}
	if len(ids) == 0 {
		return nil, ErrCorrelationDataInvalid
	}
	for _, id := range ids {
		if id == "" {
			return nil, ErrCorrelationDataInvalid
		}
	}
	return ids, nil
}

type Service interface {
	// SettleSuccess confirms the bookings and marks their payment
	// SUCCEEDED, then sends a confirmation email best-effort.
	SettleSuccess(ctx context.Context, outcome Outcome) error
	// SettleFailure rejects the bookings and marks their payment FAILED.
	SettleFailure(ctx context.Context, outcome Outcome) error
}

type service struct {
	repo     Repository
	notifier notification.Notifier
}

func NewService(repo Repository, notifier notification.Notifier) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *service) SettleSuccess(ctx context.Context, outcome Outcome) error {
	result, err := s.repo.ConfirmBookings(ctx, outcome.BookingIDs, outcome.ProviderTxnID)
	if err != nil {
		return err
	}

	if result.BookingsUpdated == 0 {
		// Duplicate delivery or a state change beat us; nothing to do.
		zap.L().Info("settlement success was a no-op",
			zap.Strings("bookingIds", outcome.BookingIDs),
			zap.String("providerTxnId", outcome.ProviderTxnID))
		return nil
	}

	zap.L().Info("settled bookings as confirmed",
		zap.Int64("bookings", result.BookingsUpdated),
		zap.Int64("payments", result.PaymentsUpdated),
		zap.String("providerTxnId", outcome.ProviderTxnID))

	s.notifyConfirmation(ctx, outcome.BookingIDs)
	return nil
}

func (s *service) SettleFailure(ctx context.Context, outcome Outcome) error {
	result, err := s.repo.RejectBookings(ctx, outcome.BookingIDs, outcome.ProviderTxnID)
	if err != nil {
		return err
	}

	if result.BookingsUpdated == 0 {
		zap.L().Info("settlement failure was a no-op",
			zap.Strings("bookingIds", outcome.BookingIDs),
			zap.String("providerTxnId", outcome.ProviderTxnID))
		return nil
	}

	zap.L().Info("settled bookings as rejected",
		zap.Int64("bookings", result.BookingsUpdated),
		zap.Int64("payments", result.PaymentsUpdated),
		zap.String("providerTxnId", outcome.ProviderTxnID))
	return nil
}

// notifyConfirmation runs strictly after the settlement transaction. Any
// failure here is logged and swallowed; the money state is already final.
func (s *service) notifyConfirmation(ctx context.Context, bookingIDs []string) {
	details, err := s.repo.GetNotificationDetails(ctx, bookingIDs)
	if err != nil {
		zap.L().Error("failed to load confirmation email details",
			zap.Strings("bookingIds", bookingIDs), zap.Error(err))
		return
	}
	if details.Email == "" {
		zap.L().Warn("no recipient email for confirmed bookings",
			zap.Strings("bookingIds", bookingIDs))
		return
	}

	if err := s.notifier.SendBookingConfirmation(ctx, details.Email, details.Name, details.Bookings); err != nil {
		zap.L().Error("failed to send confirmation email",
			zap.String("email", details.Email),
			zap.Strings("bookingIds", bookingIDs), zap.Error(err))
		return
	}

	if err := s.repo.MarkEmailSent(ctx, bookingIDs); err != nil {
		zap.L().Error("failed to mark confirmation email as sent",
			zap.Strings("bookingIds", bookingIDs), zap.Error(err))
	}
}
