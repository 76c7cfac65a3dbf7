package inventory

import (
	"context"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
)

// SetRequest configures the allowed count for one room type of a hotel.
type SetRequest struct {
	HotelID      string
	RoomType     string
	AllowedCount int
}

type Service interface {
	// Set creates or replaces the ledger entry for (hotel, room type).
	Set(ctx context.Context, req SetRequest) (*Entry, error)
	GetByHotelAndType(ctx context.Context, hotelID string, roomType RoomType) (*Entry, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*Entry, error)
}

type service struct {
	repo         Repository
	hotelService hotel.Service
}

func NewService(repo Repository, hotelService hotel.Service) Service {
	return &service{
		repo:         repo,
		hotelService: hotelService,
	}
}

func (s *service) Set(ctx context.Context, req SetRequest) (*Entry, error) {
	rt, err := ParseRoomType(req.RoomType)
	if err != nil {
		return nil, err
	}
	if req.AllowedCount < 0 {
		return nil, ErrNegativeCount
	}

	if _, err := s.hotelService.GetByID(ctx, req.HotelID); err != nil {
		return nil, err
	}

	e := &Entry{
		HotelID:      req.HotelID,
		RoomType:     rt,
		AllowedCount: req.AllowedCount,
	}

	if err := s.repo.Upsert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) GetByHotelAndType(ctx context.Context, hotelID string, roomType RoomType) (*Entry, error) {
	return s.repo.GetByHotelAndType(ctx, hotelID, roomType)
}

func (s *service) ListByHotel(ctx context.Context, hotelID string) ([]*Entry, error) {
	return s.repo.ListByHotel(ctx, hotelID)
}
