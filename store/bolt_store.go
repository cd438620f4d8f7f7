package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"movie-ticketing/models"
	"movie-ticketing/status"
)

var showtimeBucket = []byte("showtimes")

// BoltStore keeps one durable record per showtime in a single bolt
// bucket. Bolt write transactions are atomic, so a crash mid-save never
// leaves a torn record; readers always see the previous complete value.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and ensures the showtime
// bucket exists.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open seat store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(showtimeBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create showtime bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load reads the seat record for a showtime. It returns
// status.ErrShowtimeNotFound when no record exists and a
// *status.StoreCorruptError when the stored bytes do not decode into a
// coherent record.
func (s *BoltStore) Load(showtimeID string) (*models.SeatRecord, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(showtimeBucket).Get([]byte(showtimeID))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &status.PersistenceError{Err: err}
	}
	if raw == nil {
		return nil, status.ErrShowtimeNotFound
	}

	var rec models.SeatRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &status.StoreCorruptError{ShowtimeID: showtimeID, Reason: err.Error()}
	}
	if err := validate(showtimeID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ShowtimeIDs lists every showtime with a persisted record. Used at
// startup to re-register ledgers for showtimes that predate the
// restart.
func (s *BoltStore) ShowtimeIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(showtimeBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, &status.PersistenceError{Err: err}
	}
	return ids, nil
}

// Save replaces the showtime's record in one write transaction.
func (s *BoltStore) Save(showtimeID string, rec *models.SeatRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return &status.PersistenceError{Err: err}
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(showtimeBucket).Put([]byte(showtimeID), raw)
	})
	if err != nil {
		return &status.PersistenceError{Err: err}
	}
	return nil
}

func validate(showtimeID string, rec *models.SeatRecord) error {
	if rec.ShowtimeID != showtimeID {
		return &status.StoreCorruptError{
			ShowtimeID: showtimeID,
			Reason:     fmt.Sprintf("record belongs to showtime %q", rec.ShowtimeID),
		}
	}
	if rec.TotalSeats != len(rec.Seats) {
		return &status.StoreCorruptError{
			ShowtimeID: showtimeID,
			Reason:     fmt.Sprintf("seat count mismatch: header says %d, record has %d", rec.TotalSeats, len(rec.Seats)),
		}
	}
	for _, seat := range rec.Seats {
		if !models.ValidSeatStatus(seat.Status) {
			return &status.StoreCorruptError{
				ShowtimeID: showtimeID,
				Reason:     fmt.Sprintf("seat %s has unknown status %q", seat.Label, seat.Status),
			}
		}
	}
	return nil
}
