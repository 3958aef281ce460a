package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memTx struct {
	store      *Store
	held       map[rowKey]rowLock
	heldOrder  []rowKey
	staged     map[rowKey]*entity.ShowSeat
	bookings   []*entity.Booking
	decrements map[uuid.UUID]int
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.InventoryTx) error) error {
	tx := &memTx{
		store:      s,
		held:       make(map[rowKey]rowLock),
		staged:     make(map[rowKey]*entity.ShowSeat),
		decrements: make(map[uuid.UUID]int),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (t *memTx) LockShowSeats(ctx context.Context, show *entity.Show, seatIDs []uuid.UUID) ([]*entity.ShowSeat, error) {
	ids := append([]uuid.UUID(nil), seatIDs...)
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	s := t.store
	s.mu.RLock()
	valid := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		seat, ok := s.seats[id]
		if ok && seat.TheatreID == show.TheatreID && seat.IsActive {
			valid = append(valid, id)
		}
	}
	s.mu.RUnlock()

	rows := make([]*entity.ShowSeat, 0, len(valid))
	now := time.Now()
	for _, seatID := range valid {
		key := rowKey{showID: show.ID, seatID: seatID}
		if _, ok := t.held[key]; !ok {
			lock := s.lockFor(key)
			if err := lock.lock(ctx); err != nil {
				return nil, fmt.Errorf("lock show seat %s: %w", seatID, err)
			}
			t.held[key] = lock
			t.heldOrder = append(t.heldOrder, key)
		}

		if staged, ok := t.staged[key]; ok {
			rows = append(rows, staged.Clone())
			continue
		}

		s.mu.Lock()
		s.materializeLocked(show.ID, seatID, now)
		row := s.showSeats[key].Clone()
		s.mu.Unlock()

		rows = append(rows, row)
	}

	return rows, nil
}

func (t *memTx) SaveShowSeats(_ context.Context, rows []*entity.ShowSeat) error {
	for _, row := range rows {
		key := rowKey{showID: row.ShowID, seatID: row.SeatID}
		if _, ok := t.held[key]; !ok {
			return fmt.Errorf("save show seat %s: row not locked by transaction", row.SeatID)
		}
		t.staged[key] = row.Clone()
	}
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, booking *entity.Booking, seats []*entity.BookingSeat) error {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	if _, taken := t.store.references[booking.Reference]; taken || t.stagedReference(booking.Reference) {
		return fmt.Errorf("create booking %s: %w", booking.Reference, repository.ErrDuplicateReference)
	}

	seen := make(map[rowKey]bool, len(seats))
	for _, bs := range seats {
		key := rowKey{showID: bs.ShowID, seatID: bs.SeatID}
		if _, taken := t.store.bookingSeats[key]; taken || seen[key] || t.stagedBookingSeat(key) {
			return fmt.Errorf("insert booking seat %s: %w", bs.SeatID, repository.ErrDuplicateBookingSeat)
		}
		seen[key] = true
	}

	c := cloneBooking(booking)
	c.SeatIDs = c.SeatIDs[:0]
	for _, bs := range seats {
		c.SeatIDs = append(c.SeatIDs, bs.SeatID)
	}
	t.bookings = append(t.bookings, c)
	return nil
}

func (t *memTx) stagedReference(reference string) bool {
	for _, b := range t.bookings {
		if b.Reference == reference {
			return true
		}
	}
	return false
}

func (t *memTx) stagedBookingSeat(key rowKey) bool {
	for _, b := range t.bookings {
		if b.ShowID != key.showID {
			continue
		}
		for _, id := range b.SeatIDs {
			if id == key.seatID {
				return true
			}
		}
	}
	return false
}

func (t *memTx) DecrementAvailableSeats(_ context.Context, showID uuid.UUID, n int) error {
	t.decrements[showID] += n
	return nil
}

func (t *memTx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// uniqueness is re-checked here so a commit never produces two owners
	for _, b := range t.bookings {
		if _, taken := s.references[b.Reference]; taken {
			return fmt.Errorf("commit booking %s: %w", b.Reference, repository.ErrDuplicateReference)
		}
		for _, seatID := range b.SeatIDs {
			if _, taken := s.bookingSeats[rowKey{showID: b.ShowID, seatID: seatID}]; taken {
				return fmt.Errorf("commit booking %s: %w", b.Reference, repository.ErrDuplicateBookingSeat)
			}
		}
	}

	for key, row := range t.staged {
		s.showSeats[key] = row
	}
	for _, b := range t.bookings {
		s.bookings[b.ID] = b
		s.references[b.Reference] = b.ID
		for _, seatID := range b.SeatIDs {
			s.bookingSeats[rowKey{showID: b.ShowID, seatID: seatID}] = b.ID
		}
	}
	for showID, n := range t.decrements {
		if show, ok := s.shows[showID]; ok {
			show.AvailableSeats = max(show.AvailableSeats-n, 0)
		}
	}

	if len(t.bookings) > 0 || len(t.staged) > 0 {
		s.log.Debug("Transaction committed",
			zap.Int("rows", len(t.staged)),
			zap.Int("bookings", len(t.bookings)),
		)
	}
	return nil
}

func (t *memTx) release() {
	for i := len(t.heldOrder) - 1; i >= 0; i-- {
		t.held[t.heldOrder[i]].unlock()
	}
	t.held = nil
	t.heldOrder = nil
}
