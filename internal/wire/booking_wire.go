package wire

import (
	"net/http"

	"seat-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, limit func(http.Handler) http.Handler) {
	r.Route("/api/bookings", func(r chi.Router) {
		// POST /api/bookings/confirm - turn the caller's holds into a booking
		r.With(limit).Post("/confirm", bookingHandler.ConfirmBooking)

		// GET /api/bookings/{id}
		r.Get("/{id}", bookingHandler.GetBookingByID)
	})
}
