package request

type HoldSeatsRequest struct {
	SeatIDs     []string `json:"seatIds" validate:"required,min=1,dive,uuid"`
	HoldMinutes *int     `json:"holdMinutes,omitempty" validate:"omitempty,min=5,max=10"`
	UserID      string   `json:"userId" validate:"notblank"`
}

type ReleaseSeatsRequest struct {
	SeatIDs []string `json:"seatIds" validate:"required,min=1,dive,uuid"`
	UserID  string   `json:"userId" validate:"notblank"`
}
