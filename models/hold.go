package models

import (
	"time"
)

// Hold is a time-boxed provisional reservation of one or more seats,
// created before payment and promoted to a Booking by commit.
type Hold struct {
	ShowtimeID string    `json:"showtime_id"`
	Token      string    `json:"token"`
	SeatLabels []string  `json:"seat_labels"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
