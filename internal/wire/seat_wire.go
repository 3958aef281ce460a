package wire

import (
	"net/http"

	"seat-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSeat(r chi.Router, seatHandler *adaptor.SeatHandler, limit func(http.Handler) http.Handler) {
	r.Route("/api/shows/{showId}", func(r chi.Router) {
		// GET /api/shows/{showId}/seatmap - seat map with live hold state
		r.Get("/seatmap", seatHandler.GetSeatMap)

		// POST /api/shows/{showId}/hold - rate limited per user
		r.With(limit).Post("/hold", seatHandler.HoldSeats)

		// POST /api/shows/{showId}/release
		r.Post("/release", seatHandler.ReleaseSeats)
	})
}
