package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*Room, error)
	CountByHotelAndType(ctx context.Context, hotelID string, roomType inventory.RoomType) (int, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var roomColumns = []string{
	"id",
	"hotel_id",
	"room_type",
	"price_per_night_cents",
	"capacity",
	"description",
	"created_at",
}

func scanRoom(row pgx.Row) (*Room, error) {
	var r Room
	err := row.Scan(
		&r.ID,
		&r.HotelID,
		&r.RoomType,
		&r.PricePerNightCents,
		&r.Capacity,
		&r.Description,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *pgxRepository) Create(ctx context.Context, r *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.rooms").
		Columns("hotel_id", "room_type", "price_per_night_cents", "capacity", "description").
		Values(r.HotelID, r.RoomType, r.PricePerNightCents, r.Capacity, r.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := repo.pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (repo *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(roomColumns...).
		From("public.rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	r, err := scanRoom(repo.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return r, nil
}

func (repo *pgxRepository) ListByHotel(ctx context.Context, hotelID string) ([]*Room, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(roomColumns...).
		From("public.rooms").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("room_type", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, r)
	}

	return rooms, nil
}

func (repo *pgxRepository) CountByHotelAndType(ctx context.Context, hotelID string, roomType inventory.RoomType) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.rooms").
		Where(squirrel.Eq{"hotel_id": hotelID, "room_type": roomType}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count rooms query failed: %w", err)
	}

	var count int
	if err := repo.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rooms failed: %w", err)
	}
	return count, nil
}

func (repo *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room query failed: %w", err)
	}

	ct, err := repo.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
