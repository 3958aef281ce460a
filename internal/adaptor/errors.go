package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps usecase errors to HTTP answers. Anything unknown is
// a 500 with a generic message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validation *usecase.ValidationError
		conflict   *usecase.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Any("errors", validation.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrInvalidSeats):
		log.Warn(operation+" failed - invalid seats", zap.Error(err))
		utils.ResponseBadRequest(w, capitalize(err.Error()), nil)

	case errors.As(err, &conflict):
		log.Info(operation+" failed - seats unavailable",
			zap.Strings("failed_seat_ids", conflict.SeatIDStrings()))
		utils.ResponseConflict(w, conflict.Message, conflict.SeatIDStrings())

	case errors.Is(err, usecase.ErrNoValidHold):
		log.Info(operation+" failed - no valid hold", zap.Error(err))
		utils.ResponseConflict(w, capitalize(usecase.ErrNoValidHold.Error()), nil)

	case errors.Is(err, usecase.ErrAlreadyBooked):
		log.Warn(operation+" failed - seat already booked", zap.Error(err))
		utils.ResponseConflict(w, capitalize(usecase.ErrAlreadyBooked.Error()), nil)

	default:
		log.Error(operation+" failed - internal error", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeBody reads a JSON request body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// userIDOrContext falls back to the X-User-ID identity when the request
// itself names no user.
func userIDOrContext(r *http.Request, explicit string) string {
	fromCtx, _ := utils.GetUserIDFromContext(r.Context())
	return utils.FirstNonBlank(explicit, fromCtx)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
