package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message       string            `json:"message"`
	FailedSeatIDs []string          `json:"failedSeatIds,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// ResponseJSON writes data as the bare JSON body with a custom status code
func ResponseJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusOK, data)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errors map[string]string) {
	ResponseJSON(w, http.StatusBadRequest, ErrorResponse{Message: message, Errors: errors})
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, ErrorResponse{Message: message})
}

// returns 409 Conflict, failedSeatIDs may be empty
func ResponseConflict(w http.ResponseWriter, message string, failedSeatIDs []string) {
	ResponseJSON(w, http.StatusConflict, ErrorResponse{Message: message, FailedSeatIDs: failedSeatIDs})
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusTooManyRequests, ErrorResponse{Message: message})
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
}
