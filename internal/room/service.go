package room

import (
	"context"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
)

type Service interface {
	// Create adds a room to a hotel, refusing when the hotel's inventory
	// ledger has no headroom for the room type.
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*Room, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo             Repository
	hotelService     hotel.Service
	inventoryService inventory.Service
}

func NewService(repo Repository, hotelService hotel.Service, inventoryService inventory.Service) Service {
	return &service{
		repo:             repo,
		hotelService:     hotelService,
		inventoryService: inventoryService,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	rt, err := inventory.ParseRoomType(req.RoomType)
	if err != nil {
		return nil, err
	}
	if req.PricePerNightCents <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	if _, err := s.hotelService.GetByID(ctx, req.HotelID); err != nil {
		return nil, err
	}

	entry, err := s.inventoryService.GetByHotelAndType(ctx, req.HotelID, rt)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.CountByHotelAndType(ctx, req.HotelID, rt)
	if err != nil {
		return nil, err
	}
	if !inventory.CanAccommodate(entry, existing, 1) {
		return nil, ErrInventoryExceeded
	}

	r := &Room{
		HotelID:            req.HotelID,
		RoomType:           rt,
		PricePerNightCents: req.PricePerNightCents,
		Capacity:           req.Capacity,
		Description:        req.Description,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByHotel(ctx context.Context, hotelID string) ([]*Room, error) {
	return s.repo.ListByHotel(ctx, hotelID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
