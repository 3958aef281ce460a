package adaptor

import (
	"seat-reservation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Seat    *SeatHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Seat:    NewSeatHandler(service.Hold, service.SeatMap, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}
