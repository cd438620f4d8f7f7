package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          string          `json:"id"`
	ShowtimeID  string          `json:"showtime_id"`
	SeatLabels  []string        `json:"seat_labels"`
	HolderToken string          `json:"holder_token"`
	PayerID     string          `json:"payer_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
