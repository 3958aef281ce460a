package request

type ConfirmBookingRequest struct {
	ShowID      string   `json:"showId" validate:"required,uuid"`
	SeatIDs     []string `json:"seatIds" validate:"required,min=1,dive,uuid"`
	UserID      string   `json:"userId" validate:"notblank"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string   `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
}
