package settlement

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
)

// NotificationDetails is everything the confirmation email needs, fetched
// in one query after a successful settlement.
type NotificationDetails struct {
	Email    string
	Name     string
	Bookings []notification.BookingSummary
}

type Repository interface {
	// ConfirmBookings flips PENDING bookings to CONFIRMED and their
	// PENDING payments to SUCCEEDED in one transaction, recording the
	// provider transaction id. Conditional updates keep replays harmless.
	ConfirmBookings(ctx context.Context, bookingIDs []string, providerTxnID string) (SettleResult, error)
	// RejectBookings is the failure-path twin: REJECTED and FAILED.
	RejectBookings(ctx context.Context, bookingIDs []string, providerTxnID string) (SettleResult, error)
	GetNotificationDetails(ctx context.Context, bookingIDs []string) (*NotificationDetails, error)
	MarkEmailSent(ctx context.Context, bookingIDs []string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) ConfirmBookings(ctx context.Context, bookingIDs []string, providerTxnID string) (SettleResult, error) {
	return r.settle(ctx, bookingIDs, providerTxnID, "CONFIRMED", "SUCCEEDED")
}

func (r *pgxRepository) RejectBookings(ctx context.Context, bookingIDs []string, providerTxnID string) (SettleResult, error) {
	return r.settle(ctx, bookingIDs, providerTxnID, "REJECTED", "FAILED")
}

func (r *pgxRepository) settle(ctx context.Context, bookingIDs []string, providerTxnID, bookingStatus, paymentStatus string) (SettleResult, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	var result SettleResult

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin settlement failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Update("public.bookings").
		Set("status", bookingStatus).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": bookingIDs, "status": "PENDING"}).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build settle bookings query failed: %w", err)
	}
	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("settle bookings failed: %w", err)
	}
	result.BookingsUpdated = ct.RowsAffected()

	query, args, err = psql.Select("DISTINCT payment_id").
		From("public.bookings").
		Where(squirrel.Eq{"id": bookingIDs}).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build select payment ids query failed: %w", err)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("select payment ids failed: %w", err)
	}
	var paymentIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return result, fmt.Errorf("scan payment id failed: %w", err)
		}
		paymentIDs = append(paymentIDs, id)
	}
	rows.Close()

	if len(paymentIDs) > 0 {
		query, args, err = psql.Update("public.payments").
			Set("status", paymentStatus).
			Set("stripe_payment_intent_id", providerTxnID).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": paymentIDs, "status": "PENDING"}).
			ToSql()
		if err != nil {
			return result, fmt.Errorf("build settle payments query failed: %w", err)
		}
		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return result, fmt.Errorf("settle payments failed: %w", err)
		}
		result.PaymentsUpdated = ct.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit settlement failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) GetNotificationDetails(ctx context.Context, bookingIDs []string) (*NotificationDetails, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"u.email", "u.display_name",
		"b.id", "h.name", "h.city", "h.address",
		"b.check_in_date", "b.check_out_date", "b.total_price_cents",
		"p.currency",
	).
		From("public.bookings b").
		Join("public.users u ON u.id = b.user_id").
		Join("public.hotels h ON h.id = b.hotel_id").
		Join("public.payments p ON p.id = b.payment_id").
		Where(squirrel.Eq{"b.id": bookingIDs}).
		OrderBy("b.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification details query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get notification details failed: %w", err)
	}
	defer rows.Close()

	details := &NotificationDetails{}
	for rows.Next() {
		var s notification.BookingSummary
		err := rows.Scan(
			&details.Email,
			&details.Name,
			&s.BookingID,
			&s.HotelName,
			&s.HotelCity,
			&s.HotelAddress,
			&s.CheckIn,
			&s.CheckOut,
			&s.TotalPriceCents,
			&s.Currency,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification details failed: %w", err)
		}
		details.Bookings = append(details.Bookings, s)
	}

	return details, nil
}

func (r *pgxRepository) MarkEmailSent(ctx context.Context, bookingIDs []string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("confirmation_email_sent", true).
		Where(squirrel.Eq{"id": bookingIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark email sent query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark email sent failed: %w", err)
	}
	return nil
}
