package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
)

type CreateBookingRequest struct {
	HotelID        string    `json:"hotelId" binding:"required,uuid"`
	RoomID         string    `json:"roomId" binding:"required,uuid"`
	CheckInDate    time.Time `json:"checkInDate" binding:"required"`
	CheckOutDate   time.Time `json:"checkOutDate" binding:"required"`
	NumberOfGuests int       `json:"numberOfGuests" binding:"required,gt=0"`
	NumberOfRooms  int       `json:"numberOfRooms" binding:"omitempty,gt=0"`
}

type UpdateBookingRequest struct {
	CheckInDate    *time.Time `json:"checkInDate"`
	CheckOutDate   *time.Time `json:"checkOutDate"`
	NumberOfGuests *int       `json:"numberOfGuests" binding:"omitempty,gt=0"`
}

type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED REJECTED"`
}

type CreateBookingResponse struct {
	BookingIDs      []string `json:"bookingIds"`
	PaymentID       string   `json:"paymentId"`
	TotalPriceCents int64    `json:"totalPriceCents"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type BookingResponse struct {
	ID                    string    `json:"id"`
	HotelID               string    `json:"hotelId"`
	RoomID                string    `json:"roomId"`
	PaymentID             string    `json:"paymentId"`
	Status                string    `json:"status"`
	CheckInDate           time.Time `json:"checkInDate"`
	CheckOutDate          time.Time `json:"checkOutDate"`
	NumberOfGuests        int       `json:"numberOfGuests"`
	TotalPriceCents       int64     `json:"totalPriceCents"`
	ConfirmationEmailSent bool      `json:"confirmationEmailSent"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                    b.ID,
		HotelID:               b.HotelID,
		RoomID:                b.RoomID,
		PaymentID:             b.PaymentID,
		Status:                string(b.Status),
		CheckInDate:           b.CheckInDate,
		CheckOutDate:          b.CheckOutDate,
		NumberOfGuests:        b.NumberOfGuests,
		TotalPriceCents:       b.TotalPriceCents,
		ConfirmationEmailSent: b.ConfirmationEmailSent,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}
