package adaptor

import (
	"net/http"

	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// ConfirmBooking handles POST /api/bookings/confirm
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDOrContext(r, req.UserID)

	booking, err := h.service.ConfirmBooking(r.Context(), &req)
	if err != nil {
		log := h.log.With(
			zap.String("show_id", req.ShowID),
			zap.String("correlation_id", utils.GetCorrelationIDFromContext(r.Context())),
		)
		handleServiceError(w, log, err, "confirm booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// GetBookingByID handles GET /api/bookings/{id}
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	booking, err := h.service.GetBookingByID(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, h.log.With(zap.String("booking_id", bookingID)), err, "get booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}
