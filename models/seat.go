package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatFree   SeatStatus = "FREE"
	SeatHeld   SeatStatus = "HELD"
	SeatBooked SeatStatus = "BOOKED"
)

// ValidSeatStatus reports whether s is one of the known status tokens.
// Load paths use it to reject corrupted records.
func ValidSeatStatus(s SeatStatus) bool {
	switch s {
	case SeatFree, SeatHeld, SeatBooked:
		return true
	}
	return false
}

type Seat struct {
	Label       string          `json:"label"`
	Status      SeatStatus      `json:"status"`
	HolderToken string          `json:"holder_token,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// SeatRecord is the durable unit: the full seat map of one showtime.
// It is always persisted as a whole so a reader can never observe a
// partially updated seat map.
type SeatRecord struct {
	ShowtimeID string `json:"showtime_id"`
	TotalSeats int    `json:"total_seats"`
	Seats      []Seat `json:"seats"`
}

// Clone returns a deep copy. Booking workers mutate a clone and only
// publish it after the store accepted the write.
func (r *SeatRecord) Clone() *SeatRecord {
	out := &SeatRecord{
		ShowtimeID: r.ShowtimeID,
		TotalSeats: r.TotalSeats,
		Seats:      make([]Seat, len(r.Seats)),
	}
	copy(out.Seats, r.Seats)
	for i := range out.Seats {
		if r.Seats[i].ExpiresAt != nil {
			t := *r.Seats[i].ExpiresAt
			out.Seats[i].ExpiresAt = &t
		}
	}
	return out
}

// SeatByLabel returns a pointer into r.Seats, or nil when the label is
// not part of this showtime's layout.
func (r *SeatRecord) SeatByLabel(label string) *Seat {
	for i := range r.Seats {
		if r.Seats[i].Label == label {
			return &r.Seats[i]
		}
	}
	return nil
}
