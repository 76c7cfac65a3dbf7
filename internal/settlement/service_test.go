package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
)

type fakeRepo struct {
	mu             sync.Mutex
	bookingStatus  map[string]string
	paymentStatus  map[string]string
	bookingPayment map[string]string
	providerTxn    map[string]string
	emailSent      map[string]bool
	failSettle     error
	failDetails    error
	details        *NotificationDetails
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookingStatus:  make(map[string]string),
		paymentStatus:  make(map[string]string),
		bookingPayment: make(map[string]string),
		providerTxn:    make(map[string]string),
		emailSent:      make(map[string]bool),
		details: &NotificationDetails{
			Email: "guest@example.com",
			Name:  "Guest",
		},
	}
}

func (f *fakeRepo) addBooking(id, paymentID string) {
	f.bookingStatus[id] = "PENDING"
	f.bookingPayment[id] = paymentID
	f.paymentStatus[paymentID] = "PENDING"
}

func (f *fakeRepo) settle(bookingIDs []string, txnID, bookingStatus, paymentStatus string) (SettleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSettle != nil {
		return SettleResult{}, f.failSettle
	}

	var result SettleResult
	paymentIDs := make(map[string]struct{})
	for _, id := range bookingIDs {
		if f.bookingStatus[id] == "PENDING" {
			f.bookingStatus[id] = bookingStatus
			result.BookingsUpdated++
		}
		if pid, ok := f.bookingPayment[id]; ok {
			paymentIDs[pid] = struct{}{}
		}
	}
	for pid := range paymentIDs {
		if f.paymentStatus[pid] == "PENDING" {
			f.paymentStatus[pid] = paymentStatus
			f.providerTxn[pid] = txnID
			result.PaymentsUpdated++
		}
	}
	return result, nil
}

func (f *fakeRepo) ConfirmBookings(_ context.Context, ids []string, txnID string) (SettleResult, error) {
	return f.settle(ids, txnID, "CONFIRMED", "SUCCEEDED")
}

func (f *fakeRepo) RejectBookings(_ context.Context, ids []string, txnID string) (SettleResult, error) {
	return f.settle(ids, txnID, "REJECTED", "FAILED")
}

func (f *fakeRepo) GetNotificationDetails(_ context.Context, ids []string) (*NotificationDetails, error) {
	if f.failDetails != nil {
		return nil, f.failDetails
	}
	d := *f.details
	for _, id := range ids {
		d.Bookings = append(d.Bookings, notification.BookingSummary{BookingID: id})
	}
	return &d, nil
}

func (f *fakeRepo) MarkEmailSent(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.emailSent[id] = true
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  int
	last  []notification.BookingSummary
	fails error
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, _, _ string, bookings []notification.BookingSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails != nil {
		return f.fails
	}
	f.sent++
	f.last = bookings
	return nil
}

func TestSettleSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms bookings and payment, sends one email", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		repo.addBooking("b2", "p1")
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier)

		err := svc.SettleSuccess(ctx, Outcome{BookingIDs: []string{"b1", "b2"}, ProviderTxnID: "pi_123"})
		require.NoError(t, err)

		assert.Equal(t, "CONFIRMED", repo.bookingStatus["b1"])
		assert.Equal(t, "CONFIRMED", repo.bookingStatus["b2"])
		assert.Equal(t, "SUCCEEDED", repo.paymentStatus["p1"])
		assert.Equal(t, "pi_123", repo.providerTxn["p1"])
		assert.Equal(t, 1, notifier.sent)
		assert.Len(t, notifier.last, 2)
		assert.True(t, repo.emailSent["b1"])
		assert.True(t, repo.emailSent["b2"])
	})

	t.Run("replayed event changes nothing and sends no second email", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier)
		outcome := Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"}

		require.NoError(t, svc.SettleSuccess(ctx, outcome))
		require.NoError(t, svc.SettleSuccess(ctx, outcome))

		assert.Equal(t, "CONFIRMED", repo.bookingStatus["b1"])
		assert.Equal(t, "SUCCEEDED", repo.paymentStatus["p1"])
		assert.Equal(t, 1, notifier.sent)
	})

	t.Run("success after failure leaves the rejection in place", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier)
		outcome := Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"}

		require.NoError(t, svc.SettleFailure(ctx, outcome))
		require.NoError(t, svc.SettleSuccess(ctx, outcome))

		assert.Equal(t, "REJECTED", repo.bookingStatus["b1"])
		assert.Equal(t, "FAILED", repo.paymentStatus["p1"])
		assert.Equal(t, 0, notifier.sent)
	})

	t.Run("notification failure never bubbles up", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		notifier := &fakeNotifier{fails: errors.New("smtp down")}
		svc := NewService(repo, notifier)

		err := svc.SettleSuccess(ctx, Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"})
		require.NoError(t, err)

		assert.Equal(t, "CONFIRMED", repo.bookingStatus["b1"])
		assert.False(t, repo.emailSent["b1"])
	})

	t.Run("detail lookup failure never bubbles up", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		repo.failDetails = errors.New("query timeout")
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier)

		err := svc.SettleSuccess(ctx, Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"})
		require.NoError(t, err)
		assert.Equal(t, 0, notifier.sent)
	})

	t.Run("storage failure propagates for redelivery", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		repo.failSettle = errors.New("connection reset")
		svc := NewService(repo, &fakeNotifier{})

		err := svc.SettleSuccess(ctx, Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"})
		assert.Error(t, err)
	})
}

func TestSettleFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bookings and fails payment", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier)

		err := svc.SettleFailure(ctx, Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_999"})
		require.NoError(t, err)

		assert.Equal(t, "REJECTED", repo.bookingStatus["b1"])
		assert.Equal(t, "FAILED", repo.paymentStatus["p1"])
		assert.Equal(t, "pi_999", repo.providerTxn["p1"])
		assert.Equal(t, 0, notifier.sent)
	})

	t.Run("failure after success leaves the confirmation in place", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBooking("b1", "p1")
		svc := NewService(repo, &fakeNotifier{})
		outcome := Outcome{BookingIDs: []string{"b1"}, ProviderTxnID: "pi_123"}

		require.NoError(t, svc.SettleSuccess(ctx, outcome))
		require.NoError(t, svc.SettleFailure(ctx, outcome))

		assert.Equal(t, "CONFIRMED", repo.bookingStatus["b1"])
		assert.Equal(t, "SUCCEEDED", repo.paymentStatus["p1"])
	})
}

func TestParseBookingIDs(t *testing.T) {
	valid := map[string]string{"bookingIds": `["b1","b2"]`}

	t.Run("valid metadata", func(t *testing.T) {
		ids, err := ParseBookingIDs(valid)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b2"}, ids)
	})

	invalid := []struct {
		name     string
		metadata map[string]string
	}{
		{"nil metadata", nil},
		{"missing key", map[string]string{"other": "x"}},
		{"empty value", map[string]string{"bookingIds": ""}},
		{"not json", map[string]string{"bookingIds": "b1,b2"}},
		{"not an array", map[string]string{"bookingIds": `{"id":"b1"}`}},
		{"empty array", map[string]string{"bookingIds": `[]`}},
		{"empty element", map[string]string{"bookingIds": `["b1",""]`}},
		{"non-string element", map[string]string{"bookingIds": `["b1",2]`}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBookingIDs(tt.metadata)
			assert.ErrorIs(t, err, ErrCorrelationDataInvalid)
		})
	}
}
