package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"movie-ticketing/models"
	"movie-ticketing/status"
	"movie-ticketing/utils"
)

// SeatStore is the durable backing for seat records. store.BoltStore is
// the production implementation; tests substitute failing stores to
// exercise rollback.
type SeatStore interface {
	Load(showtimeID string) (*models.SeatRecord, error)
	Save(showtimeID string, rec *models.SeatRecord) error
}

// ledger is the authoritative in-memory seat state for one showtime.
// record is the last successfully persisted seat map; holds and bookings
// index it by token and booking ID. Mutations happen only on the
// showtime's booking worker; mu exists so Snapshot can read the published
// record without going through the queue.
type ledger struct {
	showtimeID string

	mu       sync.RWMutex
	record   *models.SeatRecord
	holds    map[string]*models.Hold
	bookings map[string]*models.Booking
}

func (l *ledger) publish(rec *models.SeatRecord) {
	l.mu.Lock()
	l.record = rec
	l.mu.Unlock()
}

// LedgerService is the process-wide registry of showtime ledgers. It
// owns the mapping from showtime ID to ledger and the write-through to
// the seat store. All apply* methods are invoked by a single booking
// worker per showtime, which is what makes their read-then-mutate
// sequences atomic.
type LedgerService struct {
	store SeatStore

	mu      sync.RWMutex
	ledgers map[string]*ledger
	corrupt map[string]*status.StoreCorruptError
}

func NewLedgerService(store SeatStore) *LedgerService {
	return &LedgerService{
		store:   store,
		ledgers: make(map[string]*ledger),
		corrupt: make(map[string]*status.StoreCorruptError),
	}
}

// Initialize loads the showtime's persisted record, or creates one with
// every seat FREE when none exists. It is idempotent: re-initializing an
// already registered showtime is a no-op. The layout (labels and prices)
// comes from the catalog service.
func (s *LedgerService) Initialize(showtimeID string, layout []models.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledgers[showtimeID]; ok {
		return nil
	}

	rec, err := s.store.Load(showtimeID)
	switch {
	case err == status.ErrShowtimeNotFound:
		rec = &models.SeatRecord{
			ShowtimeID: showtimeID,
			TotalSeats: len(layout),
			Seats:      make([]models.Seat, len(layout)),
		}
		for i, seat := range layout {
			rec.Seats[i] = models.Seat{
				Label:  seat.Label,
				Status: models.SeatFree,
				Price:  seat.Price,
			}
		}
		if err := s.store.Save(showtimeID, rec); err != nil {
			return err
		}
	case err != nil:
		// A malformed record is remembered so reads report the
		// corruption instead of claiming the showtime does not exist.
		var corruptErr *status.StoreCorruptError
		if errors.As(err, &corruptErr) {
			s.corrupt[showtimeID] = corruptErr
		}
		return err
	}

	l := &ledger{
		showtimeID: showtimeID,
		record:     rec,
		holds:      rebuildHolds(showtimeID, rec),
		bookings:   make(map[string]*models.Booking),
	}
	delete(s.corrupt, showtimeID)
	s.ledgers[showtimeID] = l
	return nil
}

// rebuildHolds reconstructs live holds from a loaded record by grouping
// HELD seats under their holder token, so holds survive a restart and
// remain expirable.
func rebuildHolds(showtimeID string, rec *models.SeatRecord) map[string]*models.Hold {
	holds := make(map[string]*models.Hold)
	for _, seat := range rec.Seats {
		if seat.Status != models.SeatHeld || seat.HolderToken == "" {
			continue
		}
		h, ok := holds[seat.HolderToken]
		if !ok {
			h = &models.Hold{
				ShowtimeID: showtimeID,
				Token:      seat.HolderToken,
			}
			if seat.ExpiresAt != nil {
				h.ExpiresAt = *seat.ExpiresAt
			}
			holds[seat.HolderToken] = h
		}
		h.SeatLabels = append(h.SeatLabels, seat.Label)
	}
	return holds
}

func (s *LedgerService) ledger(showtimeID string) (*ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.ledgers[showtimeID]; ok {
		return l, nil
	}
	if c, ok := s.corrupt[showtimeID]; ok {
		return nil, c
	}
	return nil, status.ErrShowtimeNotFound
}

// Snapshot returns the ordered seat map as last published. It reads the
// in-memory state directly and never waits on pending queue operations,
// so it is safe for UI rendering but must not be used to authorize a
// booking.
func (s *LedgerService) Snapshot(showtimeID string) ([]models.Seat, error) {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Seat, len(l.record.Seats))
	copy(out, l.record.Seats)
	return out, nil
}

// ExpiredHolds lists (showtimeID, token) pairs whose expiry has passed.
// The expirer turns these into release operations on the booking queue.
func (s *LedgerService) ExpiredHolds(now time.Time) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expired := make(map[string][]string)
	for id, l := range s.ledgers {
		l.mu.RLock()
		for token, h := range l.holds {
			if h.Expired(now) {
				expired[id] = append(expired[id], token)
			}
		}
		l.mu.RUnlock()
	}
	return expired
}

// holdCreatedAt reports when the hold under token was placed, for the
// seat-hold duration metric.
func (s *LedgerService) holdCreatedAt(showtimeID, token string) (time.Time, bool) {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return time.Time{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.holds[token]
	if !ok || h.CreatedAt.IsZero() {
		// Holds rebuilt after a restart have no creation time.
		return time.Time{}, false
	}
	return h.CreatedAt, true
}

// applyHold marks every requested seat HELD under one fresh token, or
// mutates nothing. Only a booking worker calls this.
func (s *LedgerService) applyHold(showtimeID string, seatLabels []string, ttl time.Duration) (string, error) {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return "", err
	}

	next := l.record.Clone()
	for _, label := range seatLabels {
		seat := next.SeatByLabel(label)
		if seat == nil || seat.Status != models.SeatFree {
			return "", &status.SeatUnavailableError{ShowtimeID: showtimeID, SeatLabel: label}
		}
	}

	token, err := utils.GenerateCode(16)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	for _, label := range seatLabels {
		seat := next.SeatByLabel(label)
		seat.Status = models.SeatHeld
		seat.HolderToken = token
		t := expiresAt
		seat.ExpiresAt = &t
	}

	if err := s.store.Save(showtimeID, next); err != nil {
		return "", err
	}

	l.publish(next)
	l.mu.Lock()
	l.holds[token] = &models.Hold{
		ShowtimeID: showtimeID,
		Token:      token,
		SeatLabels: append([]string(nil), seatLabels...),
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	l.mu.Unlock()
	return token, nil
}

// applyCommit promotes a live hold to a confirmed booking.
func (s *LedgerService) applyCommit(showtimeID, token, payerID string) (*models.Booking, error) {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return nil, err
	}

	h, ok := l.holds[token]
	if !ok {
		return nil, status.ErrHoldNotFound
	}
	if h.Expired(time.Now().UTC()) {
		return nil, status.ErrHoldExpired
	}

	next := l.record.Clone()
	amount := decimal.Zero
	for _, label := range h.SeatLabels {
		seat := next.SeatByLabel(label)
		seat.Status = models.SeatBooked
		seat.ExpiresAt = nil
		amount = amount.Add(seat.Price)
	}

	booking := &models.Booking{
		ID:          uuid.New().String(),
		ShowtimeID:  showtimeID,
		SeatLabels:  append([]string(nil), h.SeatLabels...),
		HolderToken: token,
		PayerID:     payerID,
		Amount:      amount,
		Status:      models.BookingConfirmed,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Save(showtimeID, next); err != nil {
		return nil, err
	}

	l.publish(next)
	l.mu.Lock()
	delete(l.holds, token)
	l.bookings[booking.ID] = booking
	l.mu.Unlock()
	return booking, nil
}

// applyRelease reverts a hold's seats to FREE. Unknown tokens are a
// no-op so that expirer sweeps racing an explicit release or a commit
// stay harmless.
func (s *LedgerService) applyRelease(showtimeID, token string) error {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return err
	}

	h, ok := l.holds[token]
	if !ok {
		return nil
	}

	next := l.record.Clone()
	for _, label := range h.SeatLabels {
		seat := next.SeatByLabel(label)
		if seat.Status == models.SeatHeld && seat.HolderToken == token {
			seat.Status = models.SeatFree
			seat.HolderToken = ""
			seat.ExpiresAt = nil
		}
	}

	if err := s.store.Save(showtimeID, next); err != nil {
		return err
	}

	l.publish(next)
	l.mu.Lock()
	delete(l.holds, token)
	l.mu.Unlock()
	return nil
}

// applyCancel reverts a confirmed booking's seats to FREE. This is the
// only path by which a BOOKED seat becomes FREE again.
func (s *LedgerService) applyCancel(showtimeID, bookingID string) error {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return err
	}

	b, ok := l.bookings[bookingID]
	if !ok || b.Status != models.BookingConfirmed {
		return status.ErrBookingNotFound
	}

	next := l.record.Clone()
	for _, label := range b.SeatLabels {
		seat := next.SeatByLabel(label)
		if seat.Status == models.SeatBooked && seat.HolderToken == b.HolderToken {
			seat.Status = models.SeatFree
			seat.HolderToken = ""
		}
	}

	if err := s.store.Save(showtimeID, next); err != nil {
		return err
	}

	l.publish(next)
	l.mu.Lock()
	b.Status = models.BookingCancelled
	l.mu.Unlock()
	return nil
}

// Booking returns a booking by ID for history/display.
func (s *LedgerService) Booking(showtimeID, bookingID string) (*models.Booking, error) {
	l, err := s.ledger(showtimeID)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[bookingID]
	if !ok {
		return nil, status.ErrBookingNotFound
	}
	return b, nil
}

// Showtimes lists registered showtime IDs in stable order.
func (s *LedgerService) Showtimes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ledgers))
	for id := range s.ledgers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
