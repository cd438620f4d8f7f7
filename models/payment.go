package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentSession struct {
	ID         string          `json:"payment_id"`
	ShowtimeID string          `json:"showtime_id"`
	PayerID    string          `json:"payer_id"`
	HoldToken  string          `json:"hold_token"`
	SeatLabels []string        `json:"seat_labels"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"` // pending, completed, failed
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

type PaymentNotification struct {
	PaymentID     string    `json:"payment_id"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}
