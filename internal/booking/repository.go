package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
)

type Repository interface {
	// CreateSet inserts a payment and its booking rows in one transaction.
	CreateSet(ctx context.Context, pay *payment.Payment, bookings []*Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int64, error)
	ListByPaymentID(ctx context.Context, paymentID string) ([]*Booking, error)
	CountActiveByRoomType(ctx context.Context, hotelID string, roomType inventory.RoomType) (int, error)
	HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	UpdateDetails(ctx context.Context, b *Booking) error
	// UpdateStatusIf flips status only when the current value matches; the
	// boolean reports whether a row changed.
	UpdateStatusIf(ctx context.Context, id string, from, to Status) (bool, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"id",
	"user_id",
	"hotel_id",
	"room_id",
	"payment_id",
	"status",
	"check_in_date",
	"check_out_date",
	"number_of_guests",
	"total_price_cents",
	"confirmation_email_sent",
	"created_at",
	"updated_at",
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.HotelID,
		&b.RoomID,
		&b.PaymentID,
		&b.Status,
		&b.CheckInDate,
		&b.CheckOutDate,
		&b.NumberOfGuests,
		&b.TotalPriceCents,
		&b.ConfirmationEmailSent,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) CreateSet(ctx context.Context, pay *payment.Payment, bookings []*Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking set failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.payments").
		Columns("amount_cents", "currency", "status").
		Values(pay.AmountCents, pay.Currency, pay.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&pay.ID, &pay.CreatedAt, &pay.UpdatedAt); err != nil {
		return fmt.Errorf("create payment failed: %w", err)
	}

	for _, b := range bookings {
		b.PaymentID = pay.ID
		query, args, err := psql.Insert("public.bookings").
			Columns(
				"user_id", "hotel_id", "room_id", "payment_id", "status",
				"check_in_date", "check_out_date", "number_of_guests", "total_price_cents",
			).
			Values(
				b.UserID, b.HotelID, b.RoomID, b.PaymentID, b.Status,
				b.CheckInDate, b.CheckOutDate, b.NumberOfGuests, b.TotalPriceCents,
			).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("create booking failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create booking set failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListByUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	columns := make([]string, len(bookingColumns), len(bookingColumns)+1)
	copy(columns, bookingColumns)
	columns = append(columns, "count(*) OVER() AS total_count")

	builder := psql.Select(columns...).
		From("public.bookings").
		Where(squirrel.Eq{"user_id": userID})

	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	query, args, err := builder.
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int64
	for rows.Next() {
		var b Booking
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.HotelID,
			&b.RoomID,
			&b.PaymentID,
			&b.Status,
			&b.CheckInDate,
			&b.CheckOutDate,
			&b.NumberOfGuests,
			&b.TotalPriceCents,
			&b.ConfirmationEmailSent,
			&b.CreatedAt,
			&b.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListByPaymentID(ctx context.Context, paymentID string) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"payment_id": paymentID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings by payment query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings by payment failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, nil
}

func (r *pgxRepository) CountActiveByRoomType(ctx context.Context, hotelID string, roomType inventory.RoomType) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id").
		Where(squirrel.Eq{
			"b.hotel_id":  hotelID,
			"r.room_type": roomType,
			"b.status":    []Status{StatusPending, StatusConfirmed},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count active bookings query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active bookings failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.NotEq{"status": []Status{StatusCancelled, StatusRejected}}).
		Where(squirrel.Lt{"check_in_date": checkOut}).
		Where(squirrel.Gt{"check_out_date": checkIn}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check booking overlap failed: %w", err)
	}
	return count > 0, nil
}

func (r *pgxRepository) UpdateDetails(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("check_in_date", b.CheckInDate).
		Set("check_out_date", b.CheckOutDate).
		Set("number_of_guests", b.NumberOfGuests).
		Set("total_price_cents", b.TotalPriceCents).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateStatusIf(ctx context.Context, id string, from, to Status) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update booking status failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgxRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": StatusPending}).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build expire stale bookings query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire stale bookings failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
