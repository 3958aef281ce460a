// Package memstore is the in-process implementation of the catalog, the
// seat inventory and the bookings. Each (show, seat) row has its own lock,
// held from LockShowSeats until the transaction ends. Writes are staged and
// only become visible on commit.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/data/seed"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type rowKey struct {
	showID uuid.UUID
	seatID uuid.UUID
}

// rowLock is a mutex that can be abandoned when the context ends.
type rowLock chan struct{}

func (l rowLock) lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l rowLock) tryLock() bool {
	select {
	case l <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l rowLock) unlock() {
	<-l
}

type Store struct {
	mu           sync.RWMutex
	theatres     map[uuid.UUID]*entity.Theatre
	seats        map[uuid.UUID]*entity.Seat
	shows        map[uuid.UUID]*entity.Show
	showSeats    map[rowKey]*entity.ShowSeat
	locks        map[rowKey]rowLock
	bookings     map[uuid.UUID]*entity.Booking
	bookingSeats map[rowKey]uuid.UUID
	references   map[string]uuid.UUID

	log *zap.Logger
}

func New(log *zap.Logger) *Store {
	return &Store{
		theatres:     make(map[uuid.UUID]*entity.Theatre),
		seats:        make(map[uuid.UUID]*entity.Seat),
		shows:        make(map[uuid.UUID]*entity.Show),
		showSeats:    make(map[rowKey]*entity.ShowSeat),
		locks:        make(map[rowKey]rowLock),
		bookings:     make(map[uuid.UUID]*entity.Booking),
		bookingSeats: make(map[rowKey]uuid.UUID),
		references:   make(map[string]uuid.UUID),
		log:          log.With(zap.String("repository", "memstore")),
	}
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Catalog:   s,
		Inventory: s,
		Booking:   s,
	}
}

// ==================== CATALOG WRITES ====================

func (s *Store) AddTheatre(t *entity.Theatre) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	s.theatres[t.ID] = &c
}

func (s *Store) AddSeat(seat *entity.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *seat
	s.seats[seat.ID] = &c
}

func (s *Store) AddShow(show *entity.Show) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *show
	c.Theatre = nil
	s.shows[show.ID] = &c
}

// SetSeatActive flips the only mutable attribute of a seat.
func (s *Store) SetSeatActive(seatID uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat, ok := s.seats[seatID]; ok {
		seat.IsActive = active
	}
}

func (s *Store) SeedCatalog(c *seed.Catalog) {
	s.AddTheatre(c.Theatre)
	for _, seat := range c.Seats {
		s.AddSeat(seat)
	}
	for _, show := range c.Shows {
		s.AddShow(show)
	}
	s.log.Info("Demo catalog seeded",
		zap.String("theatre_id", c.Theatre.ID.String()),
		zap.Int("seats", len(c.Seats)),
		zap.Int("shows", len(c.Shows)),
	)
}

// ==================== CATALOG READS ====================

func (s *Store) FindShowByID(_ context.Context, showID uuid.UUID) (*entity.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	show, ok := s.shows[showID]
	if !ok {
		return nil, nil
	}
	c := *show
	if t, ok := s.theatres[show.TheatreID]; ok {
		tc := *t
		c.Theatre = &tc
	}
	return &c, nil
}

func (s *Store) FindActiveSeatsByTheatre(_ context.Context, theatreID uuid.UUID) ([]*entity.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seats []*entity.Seat
	for _, seat := range s.seats {
		if seat.TheatreID == theatreID && seat.IsActive {
			c := *seat
			seats = append(seats, &c)
		}
	}
	sortSeats(seats)
	return seats, nil
}

func (s *Store) FindSeatsByIDs(_ context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seats []*entity.Seat
	for _, id := range seatIDs {
		if seat, ok := s.seats[id]; ok {
			c := *seat
			seats = append(seats, &c)
		}
	}
	sortSeats(seats)
	return seats, nil
}

func sortSeats(seats []*entity.Seat) {
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowLabel != seats[j].RowLabel {
			return seats[i].RowLabel < seats[j].RowLabel
		}
		return seats[i].SeatNumber < seats[j].SeatNumber
	})
}

// ==================== INVENTORY ====================

func (s *Store) EnsureShowSeats(_ context.Context, show *entity.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := 0
	for _, seat := range s.seats {
		if seat.TheatreID != show.TheatreID || !seat.IsActive {
			continue
		}
		if s.materializeLocked(show.ID, seat.ID, now) {
			created++
		}
	}
	if created > 0 {
		s.log.Debug("Show seats materialized",
			zap.String("show_id", show.ID.String()),
			zap.Int("created", created),
		)
	}
	return nil
}

// materializeLocked creates an AVAILABLE row when missing. Caller holds s.mu.
func (s *Store) materializeLocked(showID, seatID uuid.UUID, now time.Time) bool {
	key := rowKey{showID: showID, seatID: seatID}
	if _, ok := s.showSeats[key]; ok {
		return false
	}
	s.showSeats[key] = &entity.ShowSeat{
		ID:        uuid.New(),
		ShowID:    showID,
		SeatID:    seatID,
		Status:    entity.ShowSeatAvailable,
		UpdatedAt: now,
	}
	return true
}

func (s *Store) FindShowSeats(_ context.Context, showID uuid.UUID) ([]*entity.ShowSeat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*entity.ShowSeat
	for key, row := range s.showSeats {
		if key.showID == showID {
			rows = append(rows, row.Clone())
		}
	}
	return rows, nil
}

func (s *Store) ClearExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	s.mu.RLock()
	var candidates []rowKey
	for key, row := range s.showSeats {
		if row.Status == entity.ShowSeatHeld && row.HoldExpiresAt != nil && row.HoldExpiresAt.Before(now) {
			candidates = append(candidates, key)
		}
	}
	s.mu.RUnlock()

	var cleared int64
	for _, key := range candidates {
		lock := s.lockFor(key)
		if !lock.tryLock() {
			// in use by a request, next sweep picks it up
			continue
		}

		s.mu.Lock()
		row := s.showSeats[key]
		if row.Status == entity.ShowSeatHeld && row.HoldExpiresAt != nil && row.HoldExpiresAt.Before(now) {
			row.Release(now)
			cleared++
		}
		s.mu.Unlock()

		lock.unlock()
	}

	return cleared, nil
}

func (s *Store) lockFor(key rowKey) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = make(rowLock, 1)
		s.locks[key] = lock
	}
	return lock
}

// ==================== BOOKINGS ====================

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(booking), nil
}

func (s *Store) FindDueReminders(_ context.Context, from, to time.Time) ([]*entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*entity.Booking
	for _, b := range s.bookings {
		if b.Status != entity.BookingStatusConfirmed || b.ReminderSentAt != nil {
			continue
		}
		if b.PhoneNumber == nil || *b.PhoneNumber == "" {
			continue
		}
		show, ok := s.shows[b.ShowID]
		if !ok || show.StartTime.Before(from) || show.StartTime.After(to) {
			continue
		}
		due = append(due, cloneBooking(b))
	}
	sort.Slice(due, func(i, j int) bool {
		return s.shows[due[i].ShowID].StartTime.Before(s.shows[due[j].ShowID].StartTime)
	})
	return due, nil
}

func (s *Store) MarkReminderSent(_ context.Context, bookingID uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok || b.ReminderSentAt != nil {
		return false, nil
	}
	b.ReminderSentAt = &at
	return true, nil
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.SeatIDs = append([]uuid.UUID(nil), b.SeatIDs...)
	return &c
}
