package http

import (
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
)

type SetInventoryRequest struct {
	RoomType     string `json:"roomType" binding:"required"`
	AllowedCount *int   `json:"allowedCount" binding:"required,gte=0"`
}

type EntryResponse struct {
	ID           string `json:"id"`
	HotelID      string `json:"hotelId"`
	RoomType     string `json:"roomType"`
	AllowedCount int    `json:"allowedCount"`
}

func NewEntryResponse(e *inventory.Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		HotelID:      e.HotelID,
		RoomType:     string(e.RoomType),
		AllowedCount: e.AllowedCount,
	}
}
