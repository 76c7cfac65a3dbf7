package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

type CreateRoomRequest struct {
	RoomType           string `json:"roomType" binding:"required"`
	PricePerNightCents int64  `json:"pricePerNightCents" binding:"required,gt=0"`
	Capacity           int    `json:"capacity" binding:"required,gt=0"`
	Description        string `json:"description"`
}

type RoomResponse struct {
	ID                 string    `json:"id"`
	HotelID            string    `json:"hotelId"`
	RoomType           string    `json:"roomType"`
	PricePerNightCents int64     `json:"pricePerNightCents"`
	Capacity           int       `json:"capacity"`
	Description        string    `json:"description"`
	CreatedAt          time.Time `json:"createdAt"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:                 r.ID,
		HotelID:            r.HotelID,
		RoomType:           string(r.RoomType),
		PricePerNightCents: r.PricePerNightCents,
		Capacity:           r.Capacity,
		Description:        r.Description,
		CreatedAt:          r.CreatedAt,
	}
}
