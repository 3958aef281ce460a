package entity

import (
	"time"

	"github.com/google/uuid"
)

type ShowSeatStatus string

const (
	ShowSeatAvailable ShowSeatStatus = "AVAILABLE"
	ShowSeatHeld      ShowSeatStatus = "HELD"
	ShowSeatBooked    ShowSeatStatus = "BOOKED"
)

// ShowSeat is the inventory row of one seat for one show.
type ShowSeat struct {
	ID            uuid.UUID      `db:"id"`
	ShowID        uuid.UUID      `db:"show_id"`
	SeatID        uuid.UUID      `db:"seat_id"`
	Status        ShowSeatStatus `db:"status"`
	HeldByUserID  *string        `db:"held_by_user_id"`
	HoldExpiresAt *time.Time     `db:"hold_expires_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// IsActiveHold reports a HELD row whose expiry is still in the future.
func (s *ShowSeat) IsActiveHold(now time.Time) bool {
	return s.Status == ShowSeatHeld && s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// IsExpiredHold reports a HELD row that nobody owns anymore.
func (s *ShowSeat) IsExpiredHold(now time.Time) bool {
	return s.Status == ShowSeatHeld && !s.IsActiveHold(now)
}

// IsHeldBy reports an active hold owned by userID.
func (s *ShowSeat) IsHeldBy(userID string, now time.Time) bool {
	return s.IsActiveHold(now) && s.HeldByUserID != nil && *s.HeldByUserID == userID
}

// DisplayStatus folds expired holds into AVAILABLE.
func (s *ShowSeat) DisplayStatus(now time.Time) ShowSeatStatus {
	if s.IsExpiredHold(now) {
		return ShowSeatAvailable
	}
	return s.Status
}

func (s *ShowSeat) Hold(userID string, expiresAt, now time.Time) {
	s.Status = ShowSeatHeld
	s.HeldByUserID = &userID
	s.HoldExpiresAt = &expiresAt
	s.UpdatedAt = now
}

func (s *ShowSeat) Release(now time.Time) {
	s.Status = ShowSeatAvailable
	s.HeldByUserID = nil
	s.HoldExpiresAt = nil
	s.UpdatedAt = now
}

func (s *ShowSeat) Book(now time.Time) {
	s.Status = ShowSeatBooked
	s.HeldByUserID = nil
	s.HoldExpiresAt = nil
	s.UpdatedAt = now
}

// Clone returns a deep copy so stores never share row state with callers.
func (s *ShowSeat) Clone() *ShowSeat {
	c := *s
	if s.HeldByUserID != nil {
		v := *s.HeldByUserID
		c.HeldByUserID = &v
	}
	if s.HoldExpiresAt != nil {
		v := *s.HoldExpiresAt
		c.HoldExpiresAt = &v
	}
	return &c
}
