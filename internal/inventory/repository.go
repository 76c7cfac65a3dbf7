package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Upsert(ctx context.Context, e *Entry) error
	GetByHotelAndType(ctx context.Context, hotelID string, roomType RoomType) (*Entry, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*Entry, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Upsert(ctx context.Context, e *Entry) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.hotel_room_inventories").
		Columns("hotel_id", "room_type", "allowed_count").
		Values(e.HotelID, e.RoomType, e.AllowedCount).
		Suffix("ON CONFLICT (hotel_id, room_type) DO UPDATE SET allowed_count = EXCLUDED.allowed_count").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert inventory query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID); err != nil {
		return fmt.Errorf("upsert inventory failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByHotelAndType(ctx context.Context, hotelID string, roomType RoomType) (*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "hotel_id", "room_type", "allowed_count").
		From("public.hotel_room_inventories").
		Where(squirrel.Eq{"hotel_id": hotelID, "room_type": roomType}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get inventory query failed: %w", err)
	}

	var e Entry
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.HotelID, &e.RoomType, &e.AllowedCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get inventory failed: %w", err)
	}
	return &e, nil
}

func (r *pgxRepository) ListByHotel(ctx context.Context, hotelID string) ([]*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "hotel_id", "room_type", "allowed_count").
		From("public.hotel_room_inventories").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("room_type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list inventory query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.HotelID, &e.RoomType, &e.AllowedCount); err != nil {
			return nil, fmt.Errorf("scan inventory entry failed: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, nil
}
