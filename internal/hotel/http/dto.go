package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
)

type CreateHotelRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	City        string `json:"city" binding:"required,max=100"`
	Country     string `json:"country" binding:"omitempty,max=100"`
	Address     string `json:"address" binding:"omitempty,max=300"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

type UpdateHotelRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	Address     *string `json:"address" binding:"omitempty,max=300"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type ListHotelsRequest struct {
	request.ListParams
	City    string `form:"city" binding:"omitempty,max=100"`
	Country string `form:"country" binding:"omitempty,max=100"`
	Keyword string `form:"q" binding:"omitempty,max=200"`
}

type HotelResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewHotelResponse(h *hotel.Hotel) HotelResponse {
	return HotelResponse{
		ID:          h.ID,
		Name:        h.Name,
		City:        h.City,
		Country:     h.Country,
		Address:     h.Address,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}
