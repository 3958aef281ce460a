package adaptor

import (
	"net/http"

	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SeatHandler struct {
	hold    usecase.HoldService
	seatMap usecase.SeatMapService
	log     *zap.Logger
}

func NewSeatHandler(hold usecase.HoldService, seatMap usecase.SeatMapService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		hold:    hold,
		seatMap: seatMap,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// GetSeatMap handles GET /api/shows/{showId}/seatmap?userId=
func (h *SeatHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")
	viewer := userIDOrContext(r, r.URL.Query().Get("userId"))

	seatMap, err := h.seatMap.GetSeatMap(r.Context(), showID, viewer)
	if err != nil {
		handleServiceError(w, h.logFor(r), err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, seatMap)
}

// HoldSeats handles POST /api/shows/{showId}/hold
func (h *SeatHandler) HoldSeats(w http.ResponseWriter, r *http.Request) {
	var req request.HoldSeatsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDOrContext(r, req.UserID)

	resp, err := h.hold.HoldSeats(r.Context(), chi.URLParam(r, "showId"), &req)
	if err != nil {
		handleServiceError(w, h.logFor(r), err, "hold seats")
		return
	}

	utils.ResponseSuccess(w, resp)
}

// ReleaseSeats handles POST /api/shows/{showId}/release
func (h *SeatHandler) ReleaseSeats(w http.ResponseWriter, r *http.Request) {
	var req request.ReleaseSeatsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDOrContext(r, req.UserID)

	resp, err := h.hold.ReleaseSeats(r.Context(), chi.URLParam(r, "showId"), &req)
	if err != nil {
		handleServiceError(w, h.logFor(r), err, "release seats")
		return
	}

	utils.ResponseSuccess(w, resp)
}

func (h *SeatHandler) logFor(r *http.Request) *zap.Logger {
	return h.log.With(
		zap.String("show_id", chi.URLParam(r, "showId")),
		zap.String("correlation_id", utils.GetCorrelationIDFromContext(r.Context())),
	)
}
