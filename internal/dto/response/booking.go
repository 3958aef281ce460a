package response

import (
	"time"

	"seat-reservation/internal/data/entity"

	"github.com/google/uuid"
)

type ConfirmBookingResponse struct {
	BookingID string               `json:"bookingId"`
	Reference string               `json:"reference"`
	ShowID    string               `json:"showId"`
	SeatIDs   []string             `json:"seatIds"`
	Status    entity.BookingStatus `json:"status"`
}

type BookingDetailResponse struct {
	BookingID      string               `json:"bookingId"`
	Reference      string               `json:"reference"`
	ShowID         string               `json:"showId"`
	UserID         string               `json:"userId"`
	Email          *string              `json:"email,omitempty"`
	PhoneNumber    *string              `json:"phoneNumber,omitempty"`
	SeatIDs        []string             `json:"seatIds"`
	SeatsBooked    int                  `json:"seatsBooked"`
	Status         entity.BookingStatus `json:"status"`
	ReminderSentAt *time.Time           `json:"reminderSentAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func BookingToDetailResponse(b *entity.Booking) *BookingDetailResponse {
	return &BookingDetailResponse{
		BookingID:      b.ID.String(),
		Reference:      b.Reference,
		ShowID:         b.ShowID.String(),
		UserID:         b.UserID,
		Email:          b.Email,
		PhoneNumber:    b.PhoneNumber,
		SeatIDs:        UUIDStrings(b.SeatIDs),
		SeatsBooked:    b.SeatsBooked,
		Status:         b.Status,
		ReminderSentAt: b.ReminderSentAt,
		CreatedAt:      b.CreatedAt,
	}
}

func UUIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
