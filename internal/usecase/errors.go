package usecase

import (
	"errors"
	"fmt"

	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrInvalidSeats  = errors.New("invalid seats")
	ErrSeatConflict  = errors.New("seat conflict")
	ErrNoValidHold   = errors.New("seats are not held by this user or the hold has expired")
	ErrAlreadyBooked = errors.New("one or more seats are already booked")
)

// ValidationError carries the per-field messages of a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError lists every seat that blocked a hold or a release.
type ConflictError struct {
	Message string
	SeatIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %d seat(s)", e.Message, len(e.SeatIDs))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// SeatIDStrings returns the conflicting ids in lock order.
func (e *ConflictError) SeatIDStrings() []string {
	out := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		out[i] = id.String()
	}
	return out
}
