package response

import (
	"time"

	"seat-reservation/internal/data/entity"
)

type SeatHoldStatus struct {
	SeatID           string                `json:"seatId"`
	Status           entity.ShowSeatStatus `json:"status"`
	HoldExpiresAt    *time.Time            `json:"holdExpiresAt,omitempty"`
	RemainingSeconds int64                 `json:"remainingSeconds"`
}

type HoldSeatsResponse struct {
	ShowID        string           `json:"showId"`
	HoldExpiresAt time.Time        `json:"holdExpiresAt"`
	Seats         []SeatHoldStatus `json:"seats"`
}

type ReleaseSeatsResponse struct {
	ShowID string           `json:"showId"`
	Seats  []SeatHoldStatus `json:"seats"`
}

type TheatreSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type SeatMapSeat struct {
	SeatID            string                `json:"seatId"`
	RowLabel          string                `json:"rowLabel"`
	SeatNumber        int                   `json:"seatNumber"`
	SeatType          entity.SeatType       `json:"seatType"`
	Status            entity.ShowSeatStatus `json:"status"`
	HeldByCurrentUser bool                  `json:"heldByCurrentUser"`
	HoldExpiresAt     *time.Time            `json:"holdExpiresAt,omitempty"`
	RemainingSeconds  int64                 `json:"remainingSeconds"`
}

type SeatMapResponse struct {
	ShowID     string            `json:"showId"`
	Theatre    TheatreSummary    `json:"theatre"`
	Rows       []string          `json:"rows"`
	SeatTypes  []entity.SeatType `json:"seatTypes"`
	Seats      []SeatMapSeat     `json:"seats"`
	ServerTime time.Time         `json:"serverTime"`
}

// SeatHoldStatusFrom converts a locked row after the operation applied.
func SeatHoldStatusFrom(row *entity.ShowSeat, remaining int64) SeatHoldStatus {
	return SeatHoldStatus{
		SeatID:           row.SeatID.String(),
		Status:           row.Status,
		HoldExpiresAt:    row.HoldExpiresAt,
		RemainingSeconds: remaining,
	}
}
